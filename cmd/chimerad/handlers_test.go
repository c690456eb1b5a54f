package main

import (
	"net/http"
	"testing"
	"time"
)

func TestRedirectHome(t *testing.T) {
	t.Run("GET / redirects to /home/{index_file}", func(t *testing.T) {
		app := newTestApplication(t)

		req := newTestRequest(t, http.MethodGet, "/")
		res := send(t, req, app.routes())

		if res.StatusCode != http.StatusMovedPermanently {
			t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusMovedPermanently)
		}
		if got, want := res.Header.Get("Location"), "/home/"+app.cfg.IndexFile; got != want {
			t.Errorf("Location = %q, want %q", got, want)
		}
	})

	t.Run("GET /home/ redirects to /home/{index_file}", func(t *testing.T) {
		app := newTestApplication(t)

		req := newTestRequest(t, http.MethodGet, "/home/")
		res := send(t, req, app.routes())

		if res.StatusCode != http.StatusMovedPermanently {
			t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusMovedPermanently)
		}
	})
}

func TestHomeServesMarkdownDocument(t *testing.T) {
	app := newTestApplication(t)

	req := newTestRequest(t, http.MethodGet, "/home/"+app.cfg.IndexFile)
	res := send(t, req, app.routes())

	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}
	if !containsText(res.Body, "Welcome") {
		t.Error("expected rendered body to contain the document's content")
	}
}

func TestHomeMissingDocumentIs404(t *testing.T) {
	app := newTestApplication(t)

	req := newTestRequest(t, http.MethodGet, "/home/does-not-exist.md")
	res := send(t, req, app.routes())

	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusNotFound)
	}
}

func TestHomeRedirectsConfiguredPath(t *testing.T) {
	app := newTestApplication(t)
	app.cfg.Redirects["/home/old.md"] = "/home/" + app.cfg.IndexFile

	req := newTestRequest(t, http.MethodGet, "/home/old.md")
	res := send(t, req, app.routes())

	if res.StatusCode != http.StatusMovedPermanently {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusMovedPermanently)
	}
}

func TestHomeDirectoryWithIndexRedirects(t *testing.T) {
	app := newTestApplication(t)
	writeDocument(t, app, "docs/index.md", "# Docs\n")

	req := newTestRequest(t, http.MethodGet, "/home/docs")
	res := send(t, req, app.routes())

	if res.StatusCode != http.StatusMovedPermanently {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusMovedPermanently)
	}
	if got, want := res.Header.Get("Location"), "/home/docs/"+app.cfg.IndexFile; got != want {
		t.Errorf("Location = %q, want %q", got, want)
	}
}

func TestHomeDirectoryWithoutIndexGeneratesListing(t *testing.T) {
	app := newTestApplication(t)
	writeDocument(t, app, "notes/alpha.md", "# Alpha\n")
	writeDocument(t, app, "notes/beta.md", "# Beta\n")

	req := newTestRequest(t, http.MethodGet, "/home/notes")
	res := send(t, req, app.routes())

	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}
	if !containsText(res.Body, "alpha.md") || !containsText(res.Body, "beta.md") {
		t.Error("expected generated listing to link both sibling documents")
	}
}

func TestSearchBlankPageForEmptyQuery(t *testing.T) {
	app := newTestApplication(t)

	req := newTestRequest(t, http.MethodGet, "/search")
	res := send(t, req, app.routes())

	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}
}

func TestSearchFindsIndexedDocument(t *testing.T) {
	app := newTestApplication(t)
	docPath := writeDocument(t, app, "findme.md", "# Findme\n\nA uniquely identifiable phrase: zalgorithm.\n")
	app.searchIndex.Submit(docPath)
	app.searchIndex.Scan(app.cfg.HomeDir(), []string{docPath})

	deadline := time.Now().Add(2 * time.Second)
	for {
		req := newTestRequest(t, http.MethodGet, "/search?query=zalgorithm")
		res := send(t, req, app.routes())

		if res.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
		}
		if containsText(res.Body, "findme.md") {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("expected search results to list findme.md")
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestStaticServesEmbeddedAsset(t *testing.T) {
	app := newTestApplication(t)

	req := newTestRequest(t, http.MethodGet, "/static/css/site.css")
	res := send(t, req, app.routes())

	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}
}
