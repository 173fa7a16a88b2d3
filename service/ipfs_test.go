package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synchthia/kaizen/collector"
	"github.com/synchthia/kaizen/models"
	"go.uber.org/zap"
)

type receivedPart struct {
	Name        string
	ContentType string
	Content     string
}

// fakeIPFS answers /api/v0/add with one object per received part, in reverse
// so directories come last the way a node reports them.
func fakeIPFS(t *testing.T, parts *[]receivedPart) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v0/add" {
			http.NotFound(w, r)
			return
		}
		mr, err := r.MultipartReader()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		for {
			p, err := mr.NextPart()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			name, err := url.QueryUnescape(p.FileName())
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			b, err := io.ReadAll(p)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			*parts = append(*parts, receivedPart{Name: name, ContentType: p.Header.Get("Content-Type"), Content: string(b)})
		}

		w.Header().Set("Content-Type", "application/json")
		enc := json.NewEncoder(w)
		var files, dirs []receivedPart
		for _, p := range *parts {
			if p.ContentType == contentTypeDirectory {
				dirs = append([]receivedPart{p}, dirs...)
			} else {
				files = append(files, p)
			}
		}
		for _, p := range append(files, dirs...) {
			name := p.Name
			if name == "" {
				name = "Qm" + p.Content
			}
			_ = enc.Encode(map[string]string{"Name": name, "Hash": "Qm" + p.Name + p.Content, "Size": "12"})
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestIPFSClient_AddDirectory(t *testing.T) {
	var parts []receivedPart
	srv := fakeIPFS(t, &parts)

	col := &collector.Collection{
		Root:   "/tmp/site",
		IsDir:  true,
		Prefix: "public",
		Entries: []models.ContentEntry{
			{VirtualPath: "public/index.html", Content: []byte("<html>")},
			{VirtualPath: "public/img/logo.png", Content: []byte("png")},
			{VirtualPath: "public/img/icons/a.svg", Content: []byte("svg")},
			{VirtualPath: "public/z.txt", Content: []byte("z")},
		},
	}

	objs, err := NewIPFSClient(srv.URL, zap.NewNop()).Add(context.Background(), col)
	require.NoError(t, err)

	assert.Equal(t, []receivedPart{
		{Name: "public", ContentType: contentTypeDirectory},
		{Name: "public/index.html", ContentType: contentTypeFile, Content: "<html>"},
		{Name: "public/img", ContentType: contentTypeDirectory},
		{Name: "public/img/logo.png", ContentType: contentTypeFile, Content: "png"},
		{Name: "public/img/icons", ContentType: contentTypeDirectory},
		{Name: "public/img/icons/a.svg", ContentType: contentTypeFile, Content: "svg"},
		{Name: "public/z.txt", ContentType: contentTypeFile, Content: "z"},
	}, parts)

	require.Len(t, objs, 7)
	assert.Equal(t, models.AddedObject{Path: "public/index.html", Hash: "Qmpublic/index.html<html>", Size: 12}, objs[0])

	final, err := FinalObject(objs)
	require.NoError(t, err)
	assert.Equal(t, "public", final.Path)
}

func TestIPFSClient_AddEmptyDirectory(t *testing.T) {
	var parts []receivedPart
	srv := fakeIPFS(t, &parts)

	col := &collector.Collection{IsDir: true, Prefix: "public", Entries: []models.ContentEntry{}}
	objs, err := NewIPFSClient(srv.URL, zap.NewNop()).Add(context.Background(), col)
	require.NoError(t, err)

	assert.Equal(t, []receivedPart{{Name: "public", ContentType: contentTypeDirectory}}, parts)
	require.Len(t, objs, 1)
	assert.Equal(t, "public", objs[0].Path)
}

func TestIPFSClient_AddFile(t *testing.T) {
	var parts []receivedPart
	srv := fakeIPFS(t, &parts)

	col := &collector.Collection{Root: "/tmp/readme.txt", Content: []byte("readme")}
	objs, err := NewIPFSClient(srv.URL, zap.NewNop()).Add(context.Background(), col)
	require.NoError(t, err)

	assert.Equal(t, []receivedPart{{Name: "", ContentType: contentTypeFile, Content: "readme"}}, parts)
	require.Len(t, objs, 1)
	assert.Equal(t, "Qmreadme", objs[0].Hash)
}

func TestIPFSClient_NodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"Message":"repo is locked","Code":0,"Type":"error"}`))
	}))
	defer srv.Close()

	col := &collector.Collection{Content: []byte("x")}
	_, err := NewIPFSClient(srv.URL, zap.NewNop()).Add(context.Background(), col)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "repo is locked")
}

func TestIPFSClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	_, err := NewIPFSClient(srv.URL, zap.NewNop()).Add(context.Background(), &collector.Collection{Content: []byte("x")})
	assert.Error(t, err)
}

func TestDecodeAdded(t *testing.T) {
	objs, err := decodeAdded(stringsReader(`{"Name":"a","Hash":"Qa","Size":"3"}
{"Name":"","Bytes":100}
{"Name":"b","Hash":"Qb","Size":"4"}
`))
	require.NoError(t, err)
	assert.Equal(t, []models.AddedObject{
		{Path: "a", Hash: "Qa", Size: 3},
		{Path: "b", Hash: "Qb", Size: 4},
	}, objs)

	_, err = decodeAdded(stringsReader(`{"Name":"a","Hash":"Qa","Size":"x"}`))
	assert.Error(t, err)

	_, err = decodeAdded(stringsReader(`{"Name":`))
	assert.Error(t, err)
}
