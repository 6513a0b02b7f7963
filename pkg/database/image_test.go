package database_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marktplaatser/backend/pkg/database"
)

// recordingConn is a single-connection sql driver that records every
// statement it executes and answers the draft-images select with a canned
// JSON array.
type recordingConn struct {
	imagesRow []byte
	stmts     []recordedStmt
}

type recordedStmt struct {
	query string
	args  []driver.Value
}

type recordingConnector struct{ conn *recordingConn }

func (c recordingConnector) Connect(context.Context) (driver.Conn, error) { return c.conn, nil }
func (c recordingConnector) Driver() driver.Driver                        { return nil }

func (c *recordingConn) Prepare(query string) (driver.Stmt, error) {
	return &recordingStmt{conn: c, query: query}, nil
}
func (c *recordingConn) Close() error              { return nil }
func (c *recordingConn) Begin() (driver.Tx, error) { return noopTx{}, nil }

type noopTx struct{}

func (noopTx) Commit() error   { return nil }
func (noopTx) Rollback() error { return nil }

type recordingStmt struct {
	conn  *recordingConn
	query string
}

func (s *recordingStmt) Close() error  { return nil }
func (s *recordingStmt) NumInput() int { return -1 }

func (s *recordingStmt) Exec(args []driver.Value) (driver.Result, error) {
	s.conn.stmts = append(s.conn.stmts, recordedStmt{query: s.query, args: args})
	return driver.RowsAffected(1), nil
}

func (s *recordingStmt) Query(args []driver.Value) (driver.Rows, error) {
	s.conn.stmts = append(s.conn.stmts, recordedStmt{query: s.query, args: args})
	return &singleRow{value: s.conn.imagesRow}, nil
}

type singleRow struct {
	value []byte
	done  bool
}

func (r *singleRow) Columns() []string { return []string{"images"} }
func (r *singleRow) Close() error      { return nil }

func (r *singleRow) Next(dest []driver.Value) error {
	if r.done {
		return io.EOF
	}
	r.done = true
	dest[0] = r.value
	return nil
}

func TestImageAddToDraft(t *testing.T) {
	t.Parallel()

	conn := &recordingConn{imagesRow: []byte(`["https://img.example/one.jpg"]`)}
	repo := &database.ImageDatabase{DB: sql.OpenDB(recordingConnector{conn: conn})}

	img := database.StoredImage{
		Key:         "01HZX",
		DraftID:     "d1",
		UserID:      "u1",
		ContentType: "image/jpeg",
		Data:        []byte{0xff, 0xd8},
		CreatedAt:   time.Now().UTC(),
	}

	err := repo.AddToDraft(context.Background(), img, "https://img.example/two.jpg")
	require.NoError(t, err)
	require.Len(t, conn.stmts, 3)

	insert := conn.stmts[0]
	assert.Contains(t, insert.query, "insert into draft_images")
	assert.Equal(t, "u1", insert.args[2])

	lock := conn.stmts[1]
	assert.Contains(t, lock.query, "for update")
	assert.Equal(t, []driver.Value{"d1", "u1"}, lock.args)

	update := conn.stmts[2]
	assert.Contains(t, update.query, "user_id = $4")
	assert.Equal(t, "d1", update.args[2])
	assert.Equal(t, "u1", update.args[3])
	assert.JSONEq(t,
		`["https://img.example/one.jpg", "https://img.example/two.jpg"]`,
		string(update.args[0].([]byte)))
}
