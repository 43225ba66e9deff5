// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package xmind serializes a casetree.Tree into an XMind workbook: a zip
// container holding content.xml, meta.xml and META-INF/manifest.xml, plus
// the JSON parts newer viewers read when asked for. Output is
// deterministic: the same tree and title always produce the same bytes.
package xmind

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pdiddy/casemap/internal/casetree"
	"github.com/pdiddy/casemap/internal/fsutil"
	"github.com/pdiddy/casemap/internal/outline"
)

const filePerms = 0o644

// DefaultTitle names the central topic when no title is given.
const DefaultTitle = "Test cases"

// Every entry carries the same timestamp so archives are byte-identical
// across runs.
var entryModified = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// Options controls archive generation.
type Options struct {
	// Title is used for the central topic and the sheet.
	Title string

	// EmitJSON adds content.json, metadata.json and manifest.json.
	EmitJSON bool
}

type part struct {
	name      string
	mediaType string
	data      []byte
}

// Encode writes the archive for tree to w. An empty tree yields
// outline.ErrEmptyOutline and nothing is written.
func Encode(w io.Writer, tree *casetree.Tree, opts Options) error {
	data, err := Bytes(tree, opts)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return &PackagingError{Op: "write archive", Err: err}
	}
	return nil
}

// Bytes returns the archive for tree.
func Bytes(tree *casetree.Tree, opts Options) ([]byte, error) {
	if tree.Len() == 0 {
		return nil, outline.ErrEmptyOutline
	}
	title := opts.Title
	if title == "" {
		title = DefaultTitle
	}

	parts, err := buildParts(tree, title, opts.EmitJSON)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range parts {
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     p.name,
			Method:   zip.Deflate,
			Modified: entryModified,
		})
		if err != nil {
			return nil, &PackagingError{Op: "add " + p.name, Err: err}
		}
		if _, err := fw.Write(p.data); err != nil {
			return nil, &PackagingError{Op: "add " + p.name, Err: err}
		}
	}
	if err := zw.Close(); err != nil {
		return nil, &PackagingError{Op: "finish zip", Err: err}
	}
	return buf.Bytes(), nil
}

// WriteFile encodes tree and replaces path atomically. The parent directory
// is created when missing. On any failure path is left untouched.
func WriteFile(path string, tree *casetree.Tree, opts Options) error {
	data, err := Bytes(tree, opts)
	if err != nil {
		var pErr *PackagingError
		if errors.As(err, &pErr) {
			pErr.Path = path
		}
		return err
	}
	return WriteArchive(path, data)
}

// WriteArchive replaces path with already encoded archive bytes. The file
// appears under path complete and with its final mode, or not at all.
func WriteArchive(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &PackagingError{Path: path, Op: "create directory", Err: err}
	}
	if err := fsutil.WriteFile(path, data, filePerms); err != nil {
		return &PackagingError{Path: path, Op: "write", Err: err}
	}
	return nil
}

// buildParts renders every part in archive order. The manifest is
// rendered last so it can list the others.
func buildParts(tree *casetree.Tree, title string, emitJSON bool) ([]part, error) {
	var parts []part

	content, err := marshalXML(xmapContent{
		Version: formatVersion,
		Sheets: []xmlSheet{{
			ID:    sheetID,
			Topic: centralTopic(tree, title),
			Title: title,
		}},
	})
	if err != nil {
		return nil, &PackagingError{Op: "render " + PartContent, Err: err}
	}
	parts = append(parts, part{name: PartContent, mediaType: "text/xml", data: content})

	meta, err := marshalXML(xmlMeta{Version: formatVersion, Creator: xmlCreator{Name: creatorName}})
	if err != nil {
		return nil, &PackagingError{Op: "render " + PartMeta, Err: err}
	}
	parts = append(parts, part{name: PartMeta, mediaType: "text/xml", data: meta})

	if emitJSON {
		jsonParts, err := buildJSONParts(tree, title)
		if err != nil {
			return nil, err
		}
		parts = append(parts, jsonParts...)
	}

	manifest := xmlManifest{}
	for _, p := range parts {
		manifest.Entries = append(manifest.Entries, xmlFileEntry{FullPath: p.name, MediaType: p.mediaType})
	}
	manifest.Entries = append(manifest.Entries,
		xmlFileEntry{FullPath: PartManifestDir, MediaType: ""},
		xmlFileEntry{FullPath: PartManifest, MediaType: "text/xml"},
	)
	data, err := marshalXML(manifest)
	if err != nil {
		return nil, &PackagingError{Op: "render " + PartManifest, Err: err}
	}
	parts = append(parts, part{name: PartManifest, mediaType: "text/xml", data: data})
	return parts, nil
}

func centralTopic(tree *casetree.Tree, title string) xmlTopic {
	return xmlTopic{
		ID:             CentralID,
		StructureClass: structureClass,
		Title:          title,
		Children:       xmlChildrenOf(tree.Roots()),
	}
}

func xmlChildrenOf(nodes []*casetree.Node) *xmlChildren {
	if len(nodes) == 0 {
		return nil
	}
	group := xmlTopicGroup{Type: attachedTopics, Topics: make([]xmlTopic, 0, len(nodes))}
	for _, n := range nodes {
		group.Topics = append(group.Topics, xmlTopic{
			ID:       TopicID(n.ID),
			Title:    n.Label,
			Children: xmlChildrenOf(n.Children),
		})
	}
	return &xmlChildren{Topics: []xmlTopicGroup{group}}
}

// TopicID returns the archive id for a tree node id.
func TopicID(nodeID int) string {
	return "topic" + strconv.Itoa(nodeID)
}

func marshalXML(v any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func buildJSONParts(tree *casetree.Tree, title string) ([]part, error) {
	root := jsonTopic{
		ID:             CentralID,
		Class:          "topic",
		Title:          title,
		StructureClass: structureClass,
		Children:       jsonChildrenOf(tree.Roots()),
	}
	sheets := []jsonSheet{{ID: sheetID, Class: "sheet", Title: title, RootTopic: root}}

	var meta jsonMetadata
	meta.Creator.Name = creatorName

	manifest := jsonManifest{FileEntries: map[string]struct{}{
		PartContentJSON:  {},
		PartMetadataJSON: {},
	}}

	var parts []part
	for _, item := range []struct {
		name string
		v    any
	}{
		{PartContentJSON, sheets},
		{PartMetadataJSON, meta},
		{PartManifestJSON, manifest},
	} {
		data, err := json.Marshal(item.v)
		if err != nil {
			return nil, &PackagingError{Op: fmt.Sprintf("render %s", item.name), Err: err}
		}
		parts = append(parts, part{name: item.name, mediaType: "application/json", data: data})
	}
	return parts, nil
}

func jsonChildrenOf(nodes []*casetree.Node) *jsonChildren {
	if len(nodes) == 0 {
		return nil
	}
	c := &jsonChildren{Attached: make([]jsonTopic, 0, len(nodes))}
	for _, n := range nodes {
		c.Attached = append(c.Attached, jsonTopic{
			ID:       TopicID(n.ID),
			Class:    "topic",
			Title:    n.Label,
			Children: jsonChildrenOf(n.Children),
		})
	}
	return c
}
