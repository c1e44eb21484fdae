package wiki

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL+"/api.php", "wikisync-test/1.0")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestPage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("titles"); got != "Handbook" {
			t.Errorf("titles = %q", got)
		}
		fmt.Fprint(w, `{"query":{"pages":[{"title":"Handbook","revisions":[{"revid":42,"slots":{"main":{"content":"<translate>Hello</translate>"}}}]}]}}`)
	})

	p, err := c.Page(context.Background(), "Handbook")
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	if p.Rev != 42 || p.Text != "<translate>Hello</translate>" || p.Missing {
		t.Errorf("unexpected page: %+v", p)
	}
}

func TestPageMissing(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"query":{"pages":[{"title":"Nope","missing":true}]}}`)
	})

	p, err := c.Page(context.Background(), "Nope")
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	if !p.Missing {
		t.Error("missing page not flagged")
	}
}

func TestAPIErrorSurfaced(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":{"code":"readapidenied","info":"You need read permission"}}`)
	})

	_, err := c.Page(context.Background(), "Handbook")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("want *APIError, got %v", err)
	}
	if apiErr.Code != "readapidenied" {
		t.Errorf("code = %q", apiErr.Code)
	}
}

func TestUnitCollection(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("mcgroup") != "page-Handbook" || q.Get("mclanguage") != "pt" {
			t.Errorf("unexpected query: %v", q)
		}
		fmt.Fprint(w, `{"query":{"messagecollection":[
			{"key":"handbook/1","definition":"Hello.","translation":"Olá.","properties":{"status":"translated"}},
			{"key":"handbook/2","definition":"World.","translation":"Mundo.","properties":{"status":"fuzzy"}}
		]}}`)
	})

	units, err := c.UnitCollection(context.Background(), "Handbook", "pt")
	if err != nil {
		t.Fatalf("UnitCollection: %v", err)
	}
	if len(units) != 2 {
		t.Fatalf("got %d units", len(units))
	}
	if units[0].Key != "1" || units[0].Translation != "Olá." || units[0].Fuzzy {
		t.Errorf("unit 0: %+v", units[0])
	}
	if units[1].Key != "2" || !units[1].Fuzzy {
		t.Errorf("unit 1: %+v", units[1])
	}
}

func TestLoginAndEdit(t *testing.T) {
	var loginDone bool
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		switch {
		case r.Form.Get("meta") == "tokens" && r.Form.Get("type") == "login":
			fmt.Fprint(w, `{"query":{"tokens":{"logintoken":"LT+\\"}}}`)
		case r.Form.Get("action") == "login":
			if r.Form.Get("lgtoken") == "" {
				t.Error("login without token")
			}
			loginDone = true
			fmt.Fprint(w, `{"login":{"result":"Success"}}`)
		case r.Form.Get("meta") == "tokens" && r.Form.Get("type") == "csrf":
			fmt.Fprint(w, `{"query":{"tokens":{"csrftoken":"CT+\\"}}}`)
		case r.Form.Get("action") == "edit":
			if r.Method != http.MethodPost {
				t.Errorf("edit via %s", r.Method)
			}
			if r.Form.Get("token") != `CT+\` {
				t.Errorf("edit token = %q", r.Form.Get("token"))
			}
			fmt.Fprint(w, `{"edit":{"result":"Success","newrevid":101}}`)
		default:
			t.Errorf("unexpected request: %v", r.Form)
		}
	})

	ctx := context.Background()
	if err := c.Login(ctx, "Bot", "secret"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !loginDone {
		t.Fatal("login request never sent")
	}

	res, err := c.Edit(ctx, "Translations:Handbook/1/pt", "Olá.", "sync")
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if res.Rev != 101 || !res.Changed {
		t.Errorf("unexpected edit result: %+v", res)
	}
}

func TestEditNoChange(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"edit":{"result":"Success","nochange":true}}`)
	})

	res, err := c.Edit(context.Background(), "T", "same", "sync")
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if res.Changed {
		t.Error("nochange edit reported as changed")
	}
}

func TestEditRetriesBadToken(t *testing.T) {
	var edits int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		switch {
		case r.Form.Get("meta") == "tokens":
			fmt.Fprint(w, `{"query":{"tokens":{"csrftoken":"FRESH"}}}`)
		case r.Form.Get("action") == "edit":
			edits++
			if edits == 1 {
				fmt.Fprint(w, `{"error":{"code":"badtoken","info":"Invalid CSRF token."}}`)
				return
			}
			if r.Form.Get("token") != "FRESH" {
				t.Errorf("retry token = %q", r.Form.Get("token"))
			}
			fmt.Fprint(w, `{"edit":{"result":"Success","newrevid":7}}`)
		}
	})

	res, err := c.Edit(context.Background(), "T", "text", "sync")
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if edits != 2 || res.Rev != 7 {
		t.Errorf("edits=%d res=%+v", edits, res)
	}
}

func TestUnitTitle(t *testing.T) {
	got := UnitTitle("Core Values", "3", "pt")
	if got != "Translations:Core Values/3/pt" {
		t.Errorf("UnitTitle = %q", got)
	}
}
