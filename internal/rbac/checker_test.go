package rbac

import "testing"

func TestChecker_DefaultPolicy(t *testing.T) {
	c := NewChecker(nil)

	tests := []struct {
		role string
		perm string
		want bool
	}{
		{"student", "attempt:start", true},
		{"student", "attempt:view-own", true},
		{"student", "attempt:view-all", false},
		{"student", "question:manage", false},
		{"staff", "question:manage", true},
		{"staff", "config:manage", true},
		{"staff", "attempt:view-all", true},
		{"staff", "attempt:start", false},
		{"admin", "anything:at-all", true},
		{"unknown-role", "attempt:start", false},
		{"", "attempt:start", false},
	}
	for _, tc := range tests {
		if got := c.Has(tc.role, tc.perm); got != tc.want {
			t.Errorf("Has(%q, %q) = %v, want %v", tc.role, tc.perm, got, tc.want)
		}
	}
}

func TestChecker_WildcardPrefix(t *testing.T) {
	c := NewChecker(map[string][]string{
		"auditor": {"attempt:*"},
	})
	if !c.Has("auditor", "attempt:view-all") {
		t.Fatal("prefix wildcard must match namespaced perms")
	}
	if c.Has("auditor", "question:view") {
		t.Fatal("prefix wildcard must stay inside its namespace")
	}
}

func TestChecker_Any(t *testing.T) {
	c := NewChecker(nil)
	if !c.Any("staff", "attempt:view-own", "attempt:view-all") {
		t.Fatal("Any must pass when one perm matches")
	}
	if c.Any("student", "question:manage", "config:manage") {
		t.Fatal("Any must fail when no perm matches")
	}
}
