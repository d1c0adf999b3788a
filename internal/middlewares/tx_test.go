package middlewares

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-user-service/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestTxMiddleware_Commit(t *testing.T) {
	sqlxDB, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectCommit()

	nextCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		assert.NotNil(t, GetTxFromContext(r.Context()))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"message":"ok"}`))
	})

	handler := TxMiddleware(sqlxDB)(next)
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.True(t, nextCalled)
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"message":"ok"}`, rr.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxMiddleware_DefaultStatusCommits(t *testing.T) {
	sqlxDB, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectCommit()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("done"))
	})

	rr := httptest.NewRecorder()
	TxMiddleware(sqlxDB)(next).ServeHTTP(rr, httptest.NewRequest(http.MethodPut, "/", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "done", rr.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxMiddleware_RollbackOnErrorStatus(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusNotFound, http.StatusConflict, http.StatusInternalServerError} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			sqlxDB, mock := newMockDB(t)

			mock.ExpectBegin()
			mock.ExpectRollback()

			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
				w.Write([]byte(`{"error":"x"}`))
			})

			rr := httptest.NewRecorder()
			TxMiddleware(sqlxDB)(next).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))

			assert.Equal(t, status, rr.Code)
			assert.JSONEq(t, `{"error":"x"}`, rr.Body.String())
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestTxMiddleware_BeginError(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "sqlmock")

	nextCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { nextCalled = true })

	// Close db so Begin fails
	db.Close()

	rr := httptest.NewRecorder()
	TxMiddleware(sqlxDB)(next).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.False(t, nextCalled)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rr.Body.String())
}

func TestTxMiddleware_CommitError(t *testing.T) {
	sqlxDB, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(sql.ErrConnDone)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"message":"ok"}`))
	})

	rr := httptest.NewRecorder()
	TxMiddleware(sqlxDB)(next).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rr.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxMiddleware_Panic(t *testing.T) {
	sqlxDB, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("test panic")
	})

	handler := TxMiddleware(sqlxDB)(next)
	rr := httptest.NewRecorder()

	assert.Panics(t, func() {
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxMiddleware_AfterCommit(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		commitErr  error
		expectDB   func(mock sqlmock.Sqlmock, commitErr error)
		wantCalled bool
		wantStatus int
	}{
		{
			name:   "runs after commit",
			status: http.StatusCreated,
			expectDB: func(mock sqlmock.Sqlmock, _ error) {
				mock.ExpectBegin()
				mock.ExpectCommit()
			},
			wantCalled: true,
			wantStatus: http.StatusCreated,
		},
		{
			name:   "dropped on rollback",
			status: http.StatusConflict,
			expectDB: func(mock sqlmock.Sqlmock, _ error) {
				mock.ExpectBegin()
				mock.ExpectRollback()
			},
			wantStatus: http.StatusConflict,
		},
		{
			name:      "dropped on failed commit",
			status:    http.StatusCreated,
			commitErr: sql.ErrConnDone,
			expectDB: func(mock sqlmock.Sqlmock, commitErr error) {
				mock.ExpectBegin()
				mock.ExpectCommit().WillReturnError(commitErr)
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sqlxDB, mock := newMockDB(t)
			tt.expectDB(mock, tt.commitErr)

			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				AfterCommit(r.Context(), func() { called = true })
				assert.False(t, called)
				w.WriteHeader(tt.status)
			})

			rr := httptest.NewRecorder()
			TxMiddleware(sqlxDB)(next).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantCalled, called)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestAfterCommit_WithoutTransaction(t *testing.T) {
	called := false
	AfterCommit(context.Background(), func() { called = true })
	assert.True(t, called)
}

type failingWriter struct {
	*httptest.ResponseRecorder
}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestTxMiddleware_LogsWriteErrors(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	prev := logger.Log
	logger.Log = zap.New(core).Sugar()
	t.Cleanup(func() { logger.Log = prev })

	sqlxDB, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(sql.ErrConnDone)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"ok"}`))
	})
	handler := TxMiddleware(sqlxDB)(next)

	handler.ServeHTTP(failingWriter{httptest.NewRecorder()}, httptest.NewRequest(http.MethodPost, "/", nil))
	handler.ServeHTTP(failingWriter{httptest.NewRecorder()}, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, 2, logs.FilterMessage("failed to write response").Len())
	assert.NoError(t, mock.ExpectationsWereMet())
}
