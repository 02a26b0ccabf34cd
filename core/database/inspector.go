package database

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ColumnInfo describes one table column.
type ColumnInfo struct {
	Field   string
	Type    string
	Null    string
	Key     string
	Default *string
	Extra   string
}

// GetTableColumns returns the columns of table with lower-cased names and
// types. A missing table yields no columns on SQLite and an error on MySQL.
func GetTableColumns(db *gorm.DB, table string) ([]ColumnInfo, error) {
	var columns []ColumnInfo

	if db.Dialector.Name() == DriverSQLite {
		var rows []struct {
			Cid       int
			Name      string
			Type      string
			Notnull   int
			DfltValue *string
			Pk        int
		}
		if err := db.Raw(fmt.Sprintf("PRAGMA table_info('%s')", table)).Scan(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to get columns for table %s: %w", table, err)
		}
		for _, r := range rows {
			col := ColumnInfo{Field: strings.ToLower(r.Name), Type: strings.ToLower(r.Type), Default: r.DfltValue}
			if r.Pk > 0 {
				col.Key = "PRI"
			}
			columns = append(columns, col)
		}
		return columns, nil
	}

	if err := db.Raw(fmt.Sprintf("SHOW COLUMNS FROM `%s`", table)).Scan(&columns).Error; err != nil {
		return nil, fmt.Errorf("failed to get columns for table %s: %w", table, err)
	}
	for i := range columns {
		columns[i].Field = strings.ToLower(columns[i].Field)
		columns[i].Type = strings.ToLower(columns[i].Type)
	}
	return columns, nil
}

// VerifyKV checks that the key/value table exists with the expected
// columns and returns them.
func VerifyKV(db *gorm.DB) ([]ColumnInfo, error) {
	columns, err := GetTableColumns(db, KVEntry{}.TableName())
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, ErrNoTable
	}

	found := make(map[string]ColumnInfo, len(columns))
	for _, c := range columns {
		found[c.Field] = c
	}
	for _, want := range []string{"entry_key", "entry_value"} {
		if _, ok := found[want]; !ok {
			return columns, fmt.Errorf("kv table is missing column %s", want)
		}
	}
	if found["entry_key"].Key != "PRI" {
		return columns, fmt.Errorf("kv table column entry_key is not the primary key")
	}
	return columns, nil
}
