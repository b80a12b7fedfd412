package prune

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/klauspost/compress/zstd"
)

func TestResolveIndexes_Union(t *testing.T) {
	s := newFakeStore()
	s.add("web/a.index.json", daysOld(0), indexDoc(t, "etc/nginx", "nginx.conf", "mime.types"))
	s.add("web/b.index.json", daysOld(1), indexDoc(t, "var/www", "index.html"))

	indexes := []Object{
		{Key: "web/a.index.json", LastModified: daysOld(0)},
		{Key: "web/b.index.json", LastModified: daysOld(1)},
	}
	got, err := ResolveIndexes(context.Background(), singlePool(s), indexes, "web", 2)
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]struct{}{
		"web/etc/nginx/nginx.conf": {},
		"web/etc/nginx/mime.types": {},
		"web/var/www/index.html":   {},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ResolveIndexes = %v, want %v", got, want)
	}
}

func TestResolveIndexes_Empty(t *testing.T) {
	s := newFakeStore()
	got, err := ResolveIndexes(context.Background(), singlePool(s), nil, "web", 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("ResolveIndexes(empty) = %v, want empty set", got)
	}
}

func TestResolveIndexes_WidthIndependence(t *testing.T) {
	s := newFakeStore()
	indexes := make([]Object, 0, 8)
	for i, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		key := "web/" + name + ".index.json"
		s.add(key, daysOld(i), indexDoc(t, "dir"+name, name+"-1.dat", name+"-2.dat"))
		indexes = append(indexes, Object{Key: key, LastModified: daysOld(i)})
	}

	var base map[string]struct{}
	for _, workers := range []int{1, 2, 3, 8, 16} {
		got, err := ResolveIndexes(context.Background(), singlePool(s), indexes, "web", workers)
		if err != nil {
			t.Fatalf("workers=%d: %v", workers, err)
		}
		if base == nil {
			base = got
			continue
		}
		if !reflect.DeepEqual(got, base) {
			t.Errorf("workers=%d produced a different set", workers)
		}
	}
	if len(base) != 16 {
		t.Errorf("resolved %d keys, want 16", len(base))
	}
}

func TestResolveIndexes_MalformedDocument(t *testing.T) {
	tests := []struct {
		name    string
		doc     map[string][]string
		entries int
	}{
		{"zero entries", map[string][]string{}, 0},
		{"two entries", map[string][]string{"etc": {"a"}, "var": {"b"}}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := json.Marshal(tt.doc)
			if err != nil {
				t.Fatal(err)
			}
			s := newFakeStore()
			s.add("web/bad.index.json", daysOld(0), body)

			_, err = ResolveIndexes(context.Background(), singlePool(s),
				[]Object{{Key: "web/bad.index.json"}}, "web", 1)
			var malformed *MalformedIndexError
			if !errors.As(err, &malformed) {
				t.Fatalf("err = %v, want MalformedIndexError", err)
			}
			if malformed.Entries != tt.entries {
				t.Errorf("Entries = %d, want %d", malformed.Entries, tt.entries)
			}
			if malformed.Key != "web/bad.index.json" {
				t.Errorf("Key = %q, want the failing index key", malformed.Key)
			}
		})
	}
}

func TestResolveIndexes_FetchErrorAbortsAll(t *testing.T) {
	s := newFakeStore()
	s.add("web/good.index.json", daysOld(0), indexDoc(t, "etc", "ok.conf"))
	s.add("web/broken.index.json", daysOld(1), nil)
	s.getErr["web/broken.index.json"] = errors.New("connection reset")

	indexes := []Object{
		{Key: "web/good.index.json"},
		{Key: "web/broken.index.json"},
	}
	_, err := ResolveIndexes(context.Background(), singlePool(s), indexes, "web", 2)
	if err == nil {
		t.Fatal("ResolveIndexes = nil, want fetch error")
	}
}

func TestResolveIndexes_CompressedIndex(t *testing.T) {
	plain := indexDoc(t, "etc/ssl", "cert.pem", "key.pem")
	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := zw.Write(plain); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	s := newFakeStore()
	s.add("web/snap.index.json.zst", daysOld(0), buf.Bytes())

	got, err := ResolveIndexes(context.Background(), singlePool(s),
		[]Object{{Key: "web/snap.index.json.zst"}}, "web", 1)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]struct{}{
		"web/etc/ssl/cert.pem": {},
		"web/etc/ssl/key.pem":  {},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ResolveIndexes = %v, want %v", got, want)
	}
}

func TestDecodeIndexDocument_SingleEntry(t *testing.T) {
	body := indexDoc(t, "etc/nginx", "nginx.conf")
	dir, files, err := decodeIndexDocument("web/x.index.json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if dir != "etc/nginx" {
		t.Errorf("dir = %q, want etc/nginx", dir)
	}
	if len(files) != 1 || files[0] != "nginx.conf" {
		t.Errorf("files = %v, want [nginx.conf]", files)
	}
}

func TestDecodeIndexDocument_Garbage(t *testing.T) {
	_, _, err := decodeIndexDocument("web/x.index.json", bytes.NewReader([]byte("not json")))
	if err == nil {
		t.Fatal("decodeIndexDocument = nil, want decode error")
	}
	var malformed *MalformedIndexError
	if errors.As(err, &malformed) {
		t.Error("garbage body should be a decode error, not MalformedIndexError")
	}
}
