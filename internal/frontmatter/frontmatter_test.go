package frontmatter

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestSplit(t *testing.T) {
	data := []byte("---\ntitle: Hello\n---\n\nBody text\n")
	doc, err := Split(data)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if got := string(doc.Header); got != "title: Hello\n" {
		t.Errorf("header: got %q", got)
	}
	if got := string(doc.Body); got != "\n\nBody text\n" {
		t.Errorf("body: got %q", got)
	}
}

func TestSplit_CRLFAndTrailingSpaces(t *testing.T) {
	data := []byte("--- \r\ntitle: x\r\n---\r\nbody")
	doc, err := Split(data)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if got := string(doc.Body); got != "\r\nbody" {
		t.Errorf("body: got %q", got)
	}
}

func TestSplit_Errors(t *testing.T) {
	cases := map[string]struct {
		in   string
		want error
	}{
		"empty":          {"", ErrNoFrontMatter},
		"no header":      {"# Title\n\ntext", ErrNoFrontMatter},
		"indented":       {" ---\na: 1\n---\n", ErrNoFrontMatter},
		"unterminated":   {"---\ntitle: x\nbody\n", ErrUnterminated},
		"only opening":   {"---", ErrUnterminated},
		"dashes in text": {"---\ntitle: a---b\n", ErrUnterminated},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Split([]byte(tc.in))
			if !errors.Is(err, tc.want) {
				t.Errorf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	for _, in := range []string{
		"---\n- a\n- b\n---\nbody",
		"---\njust a string\n---\nbody",
		"---\ntitle: [unclosed\n---\nbody",
	} {
		if _, _, err := Parse([]byte(in)); !errors.Is(err, ErrMalformed) {
			t.Errorf("Parse(%q): got %v, want ErrMalformed", in, err)
		}
	}
}

func TestParse_EmptyHeader(t *testing.T) {
	meta, doc, err := Parse([]byte("---\n---\nbody"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if meta.Len() != 0 {
		t.Errorf("len: got %d", meta.Len())
	}
	if string(doc.Body) != "\nbody" {
		t.Errorf("body: got %q", doc.Body)
	}
}

func TestMetadataFields(t *testing.T) {
	in := `---
title: "AWS Lambda 가이드"
date: 2025-07-01 10:00:00 +0900
categories: aws
tags: [lambda, serverless]
image:
---
`
	meta, _, err := Parse([]byte(in))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	f := meta.Fields()
	if f.Title != "AWS Lambda 가이드" {
		t.Errorf("title: got %q", f.Title)
	}
	if f.Date != "2025-07-01 10:00:00 +0900" {
		t.Errorf("date: got %q", f.Date)
	}
	if len(f.Categories) != 1 || f.Categories[0] != "aws" {
		t.Errorf("categories: got %v", f.Categories)
	}
	if len(f.Tags) != 2 || f.Tags[1] != "serverless" {
		t.Errorf("tags: got %v", f.Tags)
	}
	if f.Image != "" {
		t.Errorf("image: got %q, want empty for null", f.Image)
	}
	if !meta.Has("image") {
		t.Error("null image key should still be present")
	}
}

func TestRender_PreservesBodyAndUnknownKeys(t *testing.T) {
	body := "\n\n```html\n{% if x %}\n```\n---\ntrailing dashes stay\n"
	in := "---\nlayout: post\ntitle: Foo\ncustom:\n  nested: [1, 2]\nimage: /wrong/path.png\n---" + body

	meta, doc, err := Parse([]byte(in))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	meta.SetString("image", "/assets/img/posts/foo.png")

	out, err := doc.Render(meta)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasSuffix(out, []byte(body)) {
		t.Fatalf("body not preserved:\n%s", out)
	}

	again, _, err := Parse(out)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if got := again.Image(); got != "/assets/img/posts/foo.png" {
		t.Errorf("image: got %q", got)
	}
	want := []string{"layout", "title", "custom", "image"}
	if got := again.Keys(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("keys: got %v, want %v", got, want)
	}
	if !strings.Contains(string(out), "nested:") {
		t.Errorf("nested mapping lost:\n%s", out)
	}
}

func TestSetString_AppendsMissingKey(t *testing.T) {
	meta, doc, err := Parse([]byte("---\ntitle: Foo\n---\nbody"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	meta.SetString("image", "/assets/img/posts/foo.webp")
	out, err := doc.Render(meta)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "---\ntitle: Foo\nimage: /assets/img/posts/foo.webp\n---\nbody"
	if string(out) != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestRender_EmptyMetadata(t *testing.T) {
	doc := Document{Body: []byte("\nbody")}
	out, err := doc.Render(New())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(out) != "---\n---\nbody" {
		t.Errorf("got %q", out)
	}
}

func TestDecode_DuplicateKeysLastWins(t *testing.T) {
	meta, err := Decode([]byte("image: /a.png\ntitle: T\nimage: /b.png\ntags: [x]\n"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := meta.Image(); got != "/b.png" {
		t.Errorf("image: got %q, want /b.png", got)
	}
	if got := strings.Join(meta.Keys(), ","); got != "image,title,tags" {
		t.Errorf("keys: got %s", got)
	}
	out, err := meta.Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Count(string(out), "image:") != 1 {
		t.Errorf("duplicate key survived marshal:\n%s", out)
	}
}
