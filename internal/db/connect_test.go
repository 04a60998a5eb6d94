package db

import (
	"context"
	"testing"
)

func TestWithForeignKeys(t *testing.T) {
	cases := []struct{ in, want string }{
		{"file:app.db", "file:app.db?_pragma=foreign_keys(1)"},
		{"file:app.db?cache=shared", "file:app.db?cache=shared&_pragma=foreign_keys(1)"},
		{"file:app.db?_pragma=foreign_keys(1)", "file:app.db?_pragma=foreign_keys(1)"},
		{"file:app.db?_pragma=foreign_keys(0)", "file:app.db?_pragma=foreign_keys(0)"},
	}
	for _, tc := range cases {
		if got := withForeignKeys(tc.in); got != tc.want {
			t.Errorf("withForeignKeys(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

// Foreign keys must hold on every pooled connection, including ones
// opened after the schema ran and regardless of what the operator put
// in DB_DSN.
func TestSQLiteEnforcesForeignKeysAcrossPool(t *testing.T) {
	dbh, err := Open(context.Background(), DriverSQLite, "file:fkpool?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer dbh.Close()

	// Force fresh connections for subsequent statements.
	dbh.SetMaxIdleConns(0)

	_, err = dbh.ExecContext(context.Background(),
		`INSERT INTO download_tokens (token,result_id,storage_key,expires_at,created_at)
		 VALUES ('t-orphan','no-such-result','k.pdf',1,1)`)
	if err == nil {
		t.Fatal("orphan token row accepted: foreign keys not enforced on this connection")
	}
}
