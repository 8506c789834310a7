package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"greenrun/internal/catalog"
	"greenrun/internal/mockhost"
)

var (
	mockCatalogPath    string
	mockNavigationPath string
	mockDataStorePath  string
	mockBindAddress    string
	mockPort           int
)

var mockhostCmd = &cobra.Command{
	Use:   "mockhost",
	Short: "Start the in-tree mock TN5250 server",
	RunE: func(cmd *cobra.Command, args []string) error {
		catalogPath := valueOr(mockCatalogPath, cfg.MockHost.ScreenCatalogPath)
		navPath := valueOr(mockNavigationPath, cfg.MockHost.NavigationConfig)
		storePath := valueOr(mockDataStorePath, cfg.MockHost.DataStorePath)
		bind := valueOr(mockBindAddress, cfg.MockHost.BindAddress)
		port := mockPort
		if port == 0 {
			port = cfg.MockHost.Port
		}

		cat, err := catalog.Load(catalogPath)
		if err != nil {
			return fmt.Errorf("loading screen catalog: %w", err)
		}
		nav, err := mockhost.LoadNavigationConfig(navPath)
		if err != nil {
			return fmt.Errorf("loading navigation config: %w", err)
		}
		var store *mockhost.DataStore
		if storePath != "" {
			store, err = mockhost.LoadDataStore(storePath)
			if err != nil {
				return fmt.Errorf("loading data store: %w", err)
			}
		}

		srv := mockhost.NewServer(bind, port, cat, nav, store, prometheus.DefaultRegisterer)
		if logger != nil {
			logger.Sugar().Infof("starting mock TN5250 server on %s:%d", bind, port)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return srv.ListenAndServe(ctx)
	},
}

func init() {
	mockhostCmd.Flags().StringVar(&mockCatalogPath, "catalog", "", "Path to the screen catalog (file or directory)")
	mockhostCmd.Flags().StringVar(&mockNavigationPath, "navigation", "", "Path to the navigation config JSON file")
	mockhostCmd.Flags().StringVar(&mockDataStorePath, "data-store", "", "Path to the test data store JSON file")
	mockhostCmd.Flags().StringVar(&mockBindAddress, "bind", "", "Bind address (default from config, else 127.0.0.1)")
	mockhostCmd.Flags().IntVar(&mockPort, "port", 0, "Port (default from config, else 5250)")
}

func valueOr(flagVal, configVal string) string {
	if flagVal != "" {
		return flagVal
	}
	return configVal
}
