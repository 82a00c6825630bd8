// Package recording persists tabular records into SQLite databases. It backs
// the database trace writer, keeping the schema derived from plain structs so
// new record shapes need no hand-written DDL.
package recording

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// A Recorder is a backend that can record and store data.
type Recorder interface {
	// CreateTable creates a new table shaped after the sample entry.
	CreateTable(tableName string, sampleEntry any)

	// InsertData buffers one entry for a table that already exists.
	InsertData(tableName string, entry any)

	// ListTables returns the names of all created tables.
	ListTables() []string

	// Flush writes all buffered entries to the database.
	Flush()
}

// New creates a Recorder that writes to a SQLite database at the given path.
// An empty path picks a unique name.
func New(path string) Recorder {
	w := NewSQLiteRecorder(path)
	w.Init()

	atexit.Register(func() { w.Flush() })

	return w
}

type table struct {
	structType reflect.Type
	entries    []any
}

// SQLiteRecorder is the Recorder implementation that writes into a SQLite
// database.
type SQLiteRecorder struct {
	*sql.DB

	dbName     string
	tables     map[string]*table
	batchSize  int
	entryCount int
}

// NewSQLiteRecorder creates a new SQLiteRecorder. The Init function must be
// called before using it.
func NewSQLiteRecorder(path string) *SQLiteRecorder {
	return &SQLiteRecorder{
		dbName:    path,
		batchSize: 100000,
		tables:    make(map[string]*table),
	}
}

// Init establishes the connection to the database. It panics if the database
// file already exists.
func (w *SQLiteRecorder) Init() {
	if w.dbName == "" {
		w.dbName = "asyncspan_trace_" + xid.New().String()
	}

	filename := w.dbName + ".sqlite3"
	_, err := os.Stat(filename)
	if err == nil {
		panic(fmt.Errorf("file %s already exists", filename))
	}

	fmt.Fprintf(os.Stderr, "Trace database created: %s\n", filename)

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		panic(err)
	}

	w.DB = db
}

func isAllowedKind(kind reflect.Kind) bool {
	switch kind {
	case
		reflect.Bool,
		reflect.Int,
		reflect.Int8,
		reflect.Int16,
		reflect.Int32,
		reflect.Int64,
		reflect.Uint,
		reflect.Uint8,
		reflect.Uint16,
		reflect.Uint32,
		reflect.Uint64,
		reflect.Float32,
		reflect.Float64,
		reflect.String:
		return true
	default:
		return false
	}
}

func checkStructFields(entry any) error {
	types := reflect.TypeOf(entry)
	if types.Kind() != reflect.Struct {
		return errors.New("entry must be a struct")
	}

	for i := 0; i < types.NumField(); i++ {
		if !isAllowedKind(types.Field(i).Type.Kind()) {
			return errors.New("entry has a field of an unsupported type")
		}
	}

	return nil
}

// CreateTable creates a table with one column per field of the sample entry.
// Fields tagged `asyncspan_data:"index"` get a secondary index; fields tagged
// `asyncspan_data:"unique"` get a unique one.
func (w *SQLiteRecorder) CreateTable(tableName string, sampleEntry any) {
	err := checkStructFields(sampleEntry)
	if err != nil {
		panic(err)
	}

	structType := reflect.TypeOf(sampleEntry)

	fields := make([]string, 0, structType.NumField())
	for i := 0; i < structType.NumField(); i++ {
		fields = append(fields, structType.Field(i).Name)
	}

	createTableSQL := "CREATE TABLE " + tableName +
		" (\n\t" + strings.Join(fields, ", \n\t") + "\n);"
	w.mustExecute(createTableSQL)

	w.createIndexes(tableName, structType)

	w.tables[tableName] = &table{
		structType: structType,
		entries:    []any{},
	}
}

func (w *SQLiteRecorder) createIndexes(
	tableName string,
	structType reflect.Type,
) {
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)

		switch field.Tag.Get("asyncspan_data") {
		case "index":
			w.mustExecute(fmt.Sprintf(
				"CREATE INDEX %s_%s_index ON %s (%s);",
				tableName, field.Name, tableName, field.Name))
		case "unique":
			w.mustExecute(fmt.Sprintf(
				"CREATE UNIQUE INDEX %s_%s_uindex ON %s (%s);",
				tableName, field.Name, tableName, field.Name))
		}
	}
}

// InsertData buffers one entry, flushing once the batch size is reached.
func (w *SQLiteRecorder) InsertData(tableName string, entry any) {
	t, exists := w.tables[tableName]
	if !exists {
		panic(fmt.Sprintf("table %s does not exist", tableName))
	}

	if reflect.TypeOf(entry) != t.structType {
		panic(fmt.Sprintf("entry type does not match table %s", tableName))
	}

	t.entries = append(t.entries, entry)

	w.entryCount++
	if w.entryCount >= w.batchSize {
		w.Flush()
	}
}

// ListTables returns the names of all created tables.
func (w *SQLiteRecorder) ListTables() []string {
	tables := make([]string, 0, len(w.tables))
	for t := range w.tables {
		tables = append(tables, t)
	}

	return tables
}

// Flush writes all buffered entries to the database in one transaction.
func (w *SQLiteRecorder) Flush() {
	if w.entryCount == 0 {
		return
	}

	w.mustExecute("BEGIN TRANSACTION")
	defer w.mustExecute("COMMIT TRANSACTION")

	for tableName, t := range w.tables {
		if len(t.entries) == 0 {
			continue
		}

		stmt := w.prepareInsert(tableName, t.structType)

		for _, entry := range t.entries {
			value := reflect.ValueOf(entry)

			args := make([]any, 0, value.NumField())
			for i := 0; i < value.NumField(); i++ {
				args = append(args, value.Field(i).Interface())
			}

			_, err := stmt.Exec(args...)
			if err != nil {
				panic(err)
			}
		}

		t.entries = nil

		err := stmt.Close()
		if err != nil {
			panic(err)
		}
	}

	w.entryCount = 0
}

func (w *SQLiteRecorder) prepareInsert(
	tableName string,
	structType reflect.Type,
) *sql.Stmt {
	placeholders := make([]string, structType.NumField())
	for i := range placeholders {
		placeholders[i] = "?"
	}

	sqlStr := "INSERT INTO " + tableName +
		" VALUES (" + strings.Join(placeholders, ", ") + ")"

	stmt, err := w.Prepare(sqlStr)
	if err != nil {
		panic(err)
	}

	return stmt
}

func (w *SQLiteRecorder) mustExecute(query string) sql.Result {
	res, err := w.Exec(query)
	if err != nil {
		fmt.Printf("Failed to execute: %s\n", query)
		panic(err)
	}

	return res
}
