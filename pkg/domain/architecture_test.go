package domain

import (
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

// TestDomainDoesNotImportInternal enforces that the domain layer depends on
// nothing but the standard library.
func TestDomainDoesNotImportInternal(t *testing.T) {
	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedImports}
	pkgs, err := packages.Load(cfg, "poms/pkg/domain")
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}
	if len(pkgs) != 1 {
		t.Fatalf("expected the domain package, got %d packages", len(pkgs))
	}
	for _, e := range pkgs[0].Errors {
		t.Errorf("load domain: %v", e)
	}
	for path := range pkgs[0].Imports {
		// Standard library paths carry no dot in their first element.
		first, _, _ := strings.Cut(path, "/")
		if strings.HasPrefix(path, "poms/") || strings.Contains(first, ".") {
			t.Errorf("domain imports %s; domain must stay dependency free", path)
		}
	}
}
