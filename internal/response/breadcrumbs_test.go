package response

import "testing"

func TestBuildBreadcrumbsOmitsIndexFile(t *testing.T) {
	crumbs := buildBreadcrumbs("docs/sub/index.md", "index.md", "Home")

	if len(crumbs) != 3 {
		t.Fatalf("len(crumbs) = %d, want 3; got %+v", len(crumbs), crumbs)
	}
	if crumbs[0].URL != "/" || crumbs[0].Name != "Home" {
		t.Errorf("crumbs[0] = %+v", crumbs[0])
	}
	if crumbs[1].URL != "/docs" || crumbs[1].Name != "docs" {
		t.Errorf("crumbs[1] = %+v", crumbs[1])
	}
	if crumbs[2].URL != "" || crumbs[2].Name != "sub" {
		t.Errorf("crumbs[2] = %+v, want a bare label for the last segment", crumbs[2])
	}
}

func TestBuildBreadcrumbsLeafDocument(t *testing.T) {
	crumbs := buildBreadcrumbs("docs/page.md", "index.md", "Home")

	if len(crumbs) != 3 {
		t.Fatalf("len(crumbs) = %d, want 3; got %+v", len(crumbs), crumbs)
	}
	if crumbs[2].Name != "page.md" || crumbs[2].URL != "" {
		t.Errorf("crumbs[2] = %+v", crumbs[2])
	}
}

func TestBuildBreadcrumbsRoot(t *testing.T) {
	crumbs := buildBreadcrumbs("index.md", "index.md", "Home")

	if len(crumbs) != 1 {
		t.Fatalf("len(crumbs) = %d, want 1; got %+v", len(crumbs), crumbs)
	}
}
