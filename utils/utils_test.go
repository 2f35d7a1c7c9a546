package utils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mini-maxit/harness/tests"
	"github.com/mini-maxit/harness/utils"
)

func TestRemoveIO(t *testing.T) {
	tcs := []struct {
		name        string
		recursive   bool
		ignoreError bool
		withFile    bool
		wantErr     bool
		wantGone    bool
	}{
		{name: "empty dir", wantGone: true},
		{name: "non empty dir without recursive", withFile: true, wantErr: true},
		{name: "non empty dir ignoring error", withFile: true, ignoreError: true},
		{name: "non empty dir recursive", withFile: true, recursive: true, wantGone: true},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "run")
			if err := os.Mkdir(dir, 0o755); err != nil {
				t.Fatalf("mkdir failed: %v", err)
			}
			if tc.withFile {
				tests.WriteFile(t, dir, "solution.py", "print(1)")
			}

			err := utils.RemoveIO(dir, tc.recursive, tc.ignoreError)
			if (err != nil) != tc.wantErr {
				t.Fatalf("RemoveIO() error = %v, wantErr %v", err, tc.wantErr)
			}
			_, statErr := os.Stat(dir)
			if gone := os.IsNotExist(statErr); gone != tc.wantGone {
				t.Fatalf("dir removed = %v, want %v", gone, tc.wantGone)
			}
		})
	}
}

func TestRemoveIOMissingDir(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")
	if err := utils.RemoveIO(missing, false, false); err == nil {
		t.Fatal("expected error for missing dir")
	}
	if err := utils.RemoveIO(missing, false, true); err != nil {
		t.Fatalf("expected ignored error, got %v", err)
	}
}
