// Package tool provides the SQL toolkit used by the pilgrim agent.
//
// A Database gives read access to a SQLite (mattn/go-sqlite3) or PostgreSQL
// (jackc/pgx) database. NewSQLToolkit wraps it into four langchaingo tools:
//
//   - sql_db_list_tables: comma-separated list of tables
//   - sql_db_schema: CREATE statements and sample rows of the given tables
//   - sql_db_query_checker: asks the model to double check a query
//   - sql_db_query: runs a query and returns the rows as text
//
// Example:
//
//	db, err := tool.OpenSQLite("chinook.db")
//	if err != nil {
//		return err
//	}
//	defer db.Close()
//
//	toolkit, err := tool.NewSQLToolkit(db, llm, tool.WithReadOnly(true))
//	agent, err := prebuilt.NewSQLAgent(llm, toolkit)
//
// A read-only toolkit rejects statements that write to the database before
// they reach the driver.
package tool
