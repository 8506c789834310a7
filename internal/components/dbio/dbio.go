// Package dbio implements the database reader/writer component, backed by
// modernc.org/sqlite (pure Go, no cgo). The provider is config-selected so
// the registry entry validates it rather than assuming sqlite is the only
// possible backend (spec.md §6, §7; SPEC_FULL.md §4/§6).
package dbio

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"greenrun/internal/component"
	"greenrun/internal/dict"
)

const ComponentType = "dbio"

// Config is dbio's decoded component configuration.
type Config struct {
	Provider string            `json:"provider"` // only "sqlite" is supported
	DSN      string            `json:"dsn"`
	Mode     string            `json:"mode"` // "read" (default) | "write"
	Query    string            `json:"query"`
	Params   map[string]string `json:"params,omitempty"` // named param -> dictionary key
	OutputPrefix string        `json:"output_prefix,omitempty"`
}

// opener is swappable in tests so they can point at an in-memory database
// without going through the provider-name dispatch.
type opener func(driver, dsn string) (*sql.DB, error)

// DBIO is the component.Component implementation.
type DBIO struct {
	open opener
}

func New() component.Component { return &DBIO{open: sql.Open} }

// NewWithOpener builds a DBIO using a custom opener, for tests.
func NewWithOpener(open opener) component.Component { return &DBIO{open: open} }

func (d *DBIO) ComponentType() string { return ComponentType }

func (d *DBIO) Execute(ctx context.Context, cfg component.Configuration, data *dict.Dict) (component.Result, error) {
	start := time.Now()
	var conf Config
	if err := component.DecodeBlob(cfg.ConfigBlob, &conf); err != nil {
		return fail(start, "CONFIG_ERROR", "%s", err.Error()), nil
	}
	if conf.Provider != "sqlite" {
		return fail(start, "UNSUPPORTED_PROVIDER", "provider %q is not supported", conf.Provider), nil
	}
	if conf.Query == "" {
		return fail(start, "CONFIG_ERROR", "query is required"), nil
	}

	db, err := d.open("sqlite", conf.DSN)
	if err != nil {
		return fail(start, "CONNECTION_ERROR", "%s", err.Error()), nil
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		if ctx.Err() != nil {
			return component.Result{}, ctx.Err()
		}
		return fail(start, "CONNECTION_ERROR", "%s", err.Error()), nil
	}

	snapshot := data.Snapshot()
	args := bindArgs(conf.Query, conf.Params, snapshot)

	if conf.Mode == "write" {
		if _, err := db.ExecContext(ctx, conf.Query, args...); err != nil {
			if ctx.Err() != nil {
				return component.Result{}, ctx.Err()
			}
			return fail(start, "QUERY_ERROR", "%s", err.Error()), nil
		}
		return component.Result{Status: component.StatusSuccess, DurationMs: time.Since(start).Milliseconds()}, nil
	}

	rows, err := db.QueryContext(ctx, conf.Query, args...)
	if err != nil {
		if ctx.Err() != nil {
			return component.Result{}, ctx.Err()
		}
		return fail(start, "QUERY_ERROR", "%s", err.Error()), nil
	}
	defer rows.Close()

	out, err := scanFirstRow(rows, conf.OutputPrefix)
	if err != nil {
		return fail(start, "QUERY_ERROR", "%s", err.Error()), nil
	}
	if out == nil {
		return fail(start, "NO_ROWS_RETURNED", "query returned no rows"), nil
	}

	data.SetAll(out)
	return component.Result{Status: component.StatusSuccess, OutputData: out, DurationMs: time.Since(start).Milliseconds()}, nil
}

func bindArgs(query string, params map[string]string, snapshot map[string]string) []any {
	args := make([]any, 0, len(params))
	for _, key := range orderedParamKeys(params) {
		args = append(args, snapshot[params[key]])
	}
	return args
}

// orderedParamKeys gives a stable bind order (sql.DB positional params are
// order-sensitive): keys are sorted as plain strings, so "10" sorts before
// "2".
func orderedParamKeys(params map[string]string) []string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}

func scanFirstRow(rows *sql.Rows, prefix string) (map[string]string, error) {
	if !rows.Next() {
		return nil, rows.Err()
	}
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}

	out := make(map[string]string, len(cols))
	for i, col := range cols {
		out[prefix+col] = stringify(vals[i])
	}
	return out, nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func fail(start time.Time, code, format string, args ...any) component.Result {
	return component.Result{
		Status:     component.StatusFailure,
		Err:        &component.Error{Code: code, Message: fmt.Sprintf(format, args...)},
		DurationMs: time.Since(start).Milliseconds(),
	}
}
