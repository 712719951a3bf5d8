package clickhouse

import (
	"context"
)

// TableExists checks if a table exists. An empty database means the
// connection's current database.
func TableExists(ctx context.Context, client ClientInterface, database, table string) (bool, error) {
	query := `
		SELECT count() AS count
		FROM system.tables
		WHERE database = if({database:String} = '', currentDatabase(), {database:String})
			AND name = {table:String}
	`

	var result struct {
		Count uint64 `json:"count,string"`
	}

	err := client.QueryOne(ctx, query, Params{"database": database, "table": table}, &result)
	if err != nil {
		return false, err
	}

	return result.Count > 0, nil
}
