package testutil

import (
	"reflect"
	"testing"
)

func TestSplitStatementsBasic(t *testing.T) {
	script := `CREATE TABLE users (email VARCHAR(320) PRIMARY KEY);
INSERT INTO users VALUES ('a@example.com');
`
	got := SplitStatements(script)
	want := []string{
		"CREATE TABLE users (email VARCHAR(320) PRIMARY KEY)",
		"INSERT INTO users VALUES ('a@example.com')",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SplitStatements = %#v, want %#v", got, want)
	}
}

func TestSplitStatementsSemicolonInString(t *testing.T) {
	script := `INSERT INTO words (word, def1) VALUES ('run', 'to move fast; to flee');
INSERT INTO words (word, def1) VALUES ('stop', "halt; cease");`
	got := SplitStatements(script)
	if len(got) != 2 {
		t.Fatalf("expected 2 statements, got %d: %#v", len(got), got)
	}
	if got[0] != `INSERT INTO words (word, def1) VALUES ('run', 'to move fast; to flee')` {
		t.Fatalf("first statement mangled: %q", got[0])
	}
}

func TestSplitStatementsEscapedQuote(t *testing.T) {
	script := `INSERT INTO words (word) VALUES ('it\'s; tricky'); SELECT 1;`
	got := SplitStatements(script)
	if len(got) != 2 {
		t.Fatalf("expected 2 statements, got %d: %#v", len(got), got)
	}
	if got[0] != `INSERT INTO words (word) VALUES ('it\'s; tricky')` {
		t.Fatalf("escaped quote handled wrong: %q", got[0])
	}
}

func TestSplitStatementsComments(t *testing.T) {
	script := `-- leading comment; with semicolon
CREATE TABLE wordsets (wordset_id INT); # trailing; comment
/* block; comment */ CREATE TABLE words (word_id INT);`
	got := SplitStatements(script)
	want := []string{
		"CREATE TABLE wordsets (wordset_id INT)",
		"CREATE TABLE words (word_id INT)",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SplitStatements = %#v, want %#v", got, want)
	}
}

func TestSplitStatementsBacktickIdentifier(t *testing.T) {
	script := "CREATE TABLE `recall;history` (id INT);"
	got := SplitStatements(script)
	if len(got) != 1 {
		t.Fatalf("expected 1 statement, got %d: %#v", len(got), got)
	}
}

func TestSplitStatementsSkipsEmpty(t *testing.T) {
	got := SplitStatements(" ;; \n ; SELECT 1 ; ")
	want := []string{"SELECT 1"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SplitStatements = %#v, want %#v", got, want)
	}
}
