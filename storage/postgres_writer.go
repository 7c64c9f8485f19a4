package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
	"unicode"

	_ "github.com/lib/pq"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"powerbi-scraper/models"
	"powerbi-scraper/utils"
)

// uploadDateColumn is stamped on every loaded dataset if not already present.
const uploadDateColumn = "data_upload"

// PostgresWriter persists normalized datasets to PostgreSQL, evolving each
// remote table's schema additively. Every load replaces the full table
// contents: the remote table is a current-snapshot view, never a history.
type PostgresWriter struct {
	db     *sql.DB
	prefix string
	logger *utils.Logger
}

// NewPostgresWriter opens a connection to PostgreSQL and verifies it.
func NewPostgresWriter(dsn, tablePrefix string, logger *utils.Logger) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: abrir conexão: %w", err)
	}

	retry := &utils.RetryConfig{MaxAttempts: 5, BaseDelay: 2 * time.Second, Logger: logger}
	if err := retry.Do("postgres ping", db.Ping); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	return &PostgresWriter{db: db, prefix: tablePrefix, logger: logger}, nil
}

// Close releases the database handle.
func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// Load upserts a dataset into its remote table. Table absent: create it with
// a leading surrogate identity column. Table present: reject if the dataset
// lacks a column the table has (schema-shrink), add new dataset columns with
// inferred types, then truncate and insert. The compatibility check always
// runs before anything destructive.
func (pw *PostgresWriter) Load(ds *models.Dataset, baseName string) error {
	if ds.Empty() {
		pw.logger.Aviso("Nenhum dado para carregar na tabela base '%s'. Pulando.", baseName)
		return nil
	}

	table := pw.prefix + SanitizeIdentifier(baseName)
	pw.logger.Info("Iniciando carga para a tabela `%s`...", table)

	ds = prepareForLoad(ds)

	exists, err := pw.tableExists(table)
	if err != nil {
		return fmt.Errorf("postgres: verificar tabela `%s`: %w", table, err)
	}

	if !exists {
		pw.logger.Info("A tabela `%s` não existe. Criando e inserindo dados...", table)
		if err := pw.createTable(table, ds); err != nil {
			return err
		}
		if err := pw.insertAll(table, ds); err != nil {
			return err
		}
		pw.logger.Sucesso("Tabela `%s` criada e dados inseridos.", table)
		return nil
	}

	existing, err := pw.tableColumns(table)
	if err != nil {
		return fmt.Errorf("postgres: inspecionar colunas de `%s`: %w", table, err)
	}

	plan, err := buildLoadPlan(existing, ds)
	if err != nil {
		return fmt.Errorf("postgres: tabela `%s`: %w", table, err)
	}

	for _, col := range plan.addColumns {
		pw.logger.Info("Nova coluna detectada: `%s` (%s). Adicionando à tabela...", col.name, col.sqlType)
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", quoteIdent(table), quoteIdent(col.name), col.sqlType)
		if _, err := pw.db.Exec(stmt); err != nil {
			return fmt.Errorf("postgres: adicionar coluna `%s`: %w", col.name, err)
		}
	}

	if _, err := pw.db.Exec("TRUNCATE TABLE " + quoteIdent(table)); err != nil {
		return fmt.Errorf("postgres: truncar `%s`: %w", table, err)
	}

	if err := pw.insertAll(table, ds); err != nil {
		return err
	}

	pw.logger.Sucesso("Tabela `%s` atualizada com sucesso (%d linhas).", table, len(ds.Rows))
	return nil
}

// prepareForLoad sanitizes column names and stamps the upload timestamp. The
// caller's dataset is left untouched; rows are copied before the stamp column
// widens them.
func prepareForLoad(ds *models.Dataset) *models.Dataset {
	out := &models.Dataset{
		Columns: make([]string, len(ds.Columns)),
		Rows:    make([][]any, len(ds.Rows)),
	}
	for i, c := range ds.Columns {
		out.Columns[i] = SanitizeIdentifier(c)
	}
	for i, row := range ds.Rows {
		out.Rows[i] = append(make([]any, 0, len(row)+1), row...)
	}
	if !out.HasColumn(uploadDateColumn) {
		out.AddColumn(uploadDateColumn, time.Now())
	}
	return out
}

type columnDef struct {
	name    string
	sqlType string
}

type loadPlan struct {
	addColumns []columnDef
}

// buildLoadPlan compares the dataset's columns against the existing table
// columns (surrogate id excluded). Columns the table has but the dataset
// lacks fail the load: loading them as nulls would silently blank a
// previously populated column. Columns only the dataset has are scheduled
// as additive changes.
func buildLoadPlan(existing []string, ds *models.Dataset) (*loadPlan, error) {
	existingSet := make(map[string]struct{}, len(existing))
	for _, c := range existing {
		if c == "id" {
			continue
		}
		existingSet[c] = struct{}{}
	}

	dsSet := make(map[string]struct{}, len(ds.Columns))
	for _, c := range ds.Columns {
		dsSet[c] = struct{}{}
	}

	var missing []string
	for c := range existingSet {
		if _, ok := dsSet[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("esquema incompatível: colunas existem no banco mas faltam no dataset: %s",
			strings.Join(missing, ", "))
	}

	plan := &loadPlan{}
	for i, c := range ds.Columns {
		if _, ok := existingSet[c]; !ok {
			plan.addColumns = append(plan.addColumns, columnDef{name: c, sqlType: inferSQLType(ds, i)})
		}
	}
	return plan, nil
}

// inferSQLType picks a storage type from the column's values, preferring
// integer, then floating, temporal, boolean, and finally text.
func inferSQLType(ds *models.Dataset, col int) string {
	hasInt, hasFloat, hasTime, hasBool, hasOther := false, false, false, false, false

	for _, row := range ds.Rows {
		switch row[col].(type) {
		case nil:
		case int, int32, int64:
			hasInt = true
		case float32, float64:
			hasFloat = true
		case time.Time:
			hasTime = true
		case bool:
			hasBool = true
		default:
			hasOther = true
		}
	}

	switch {
	case hasOther:
		return "TEXT"
	case hasInt && !hasFloat && !hasTime && !hasBool:
		return "BIGINT"
	case hasFloat && !hasTime && !hasBool:
		return "DOUBLE PRECISION"
	case hasTime && !hasInt && !hasFloat && !hasBool:
		return "TIMESTAMP"
	case hasBool && !hasInt && !hasFloat && !hasTime:
		return "BOOLEAN"
	default:
		return "TEXT"
	}
}

func (pw *PostgresWriter) createTable(table string, ds *models.Dataset) error {
	defs := make([]string, 0, len(ds.Columns)+1)
	defs = append(defs, "id SERIAL PRIMARY KEY")
	for i, c := range ds.Columns {
		defs = append(defs, fmt.Sprintf("%s %s", quoteIdent(c), inferSQLType(ds, i)))
	}

	stmt := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(table), strings.Join(defs, ", "))
	if _, err := pw.db.Exec(stmt); err != nil {
		return fmt.Errorf("postgres: criar tabela `%s`: %w", table, err)
	}
	return nil
}

func (pw *PostgresWriter) tableExists(table string) (bool, error) {
	var exists bool
	err := pw.db.QueryRow(
		`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_schema = 'public' AND table_name = $1)`,
		table,
	).Scan(&exists)
	return exists, err
}

func (pw *PostgresWriter) tableColumns(table string) ([]string, error) {
	rows, err := pw.db.Query(
		`SELECT column_name FROM information_schema.columns WHERE table_schema = 'public' AND table_name = $1`,
		table,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

func (pw *PostgresWriter) insertAll(table string, ds *models.Dataset) error {
	const batchSize = 50
	for i := 0; i < len(ds.Rows); i += batchSize {
		end := i + batchSize
		if end > len(ds.Rows) {
			end = len(ds.Rows)
		}
		if err := pw.insertBatch(table, ds.Columns, ds.Rows[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (pw *PostgresWriter) insertBatch(table string, columns []string, batch [][]any) error {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quoteIdent(c)
	}

	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]any, 0, len(batch)*len(columns))

	for idx, row := range batch {
		placeholders := make([]string, len(columns))
		for j := range columns {
			placeholders[j] = fmt.Sprintf("$%d", idx*len(columns)+j+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
		valueArgs = append(valueArgs, row...)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		quoteIdent(table), strings.Join(quoted, ","), strings.Join(valueStrings, ","))

	_, err := pw.db.Exec(query, valueArgs...)
	if err != nil {
		return fmt.Errorf("postgres: inserir lote em `%s`: %w", table, err)
	}
	return nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

var stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// SanitizeIdentifier maps an arbitrary column or table label to the
// restricted identifier charset: diacritics stripped, lower-cased,
// non-alphanumeric runs collapsed to a single underscore.
func SanitizeIdentifier(name string) string {
	stripped, _, err := transform.String(stripDiacritics, name)
	if err != nil {
		stripped = name
	}

	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(stripped) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		} else {
			pendingSep = true
		}
	}
	return b.String()
}
