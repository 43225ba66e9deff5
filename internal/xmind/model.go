// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package xmind

import "encoding/xml"

// Part names inside the archive.
const (
	PartContent      = "content.xml"
	PartMeta         = "meta.xml"
	PartManifest     = "META-INF/manifest.xml"
	PartManifestDir  = "META-INF/"
	PartContentJSON  = "content.json"
	PartMetadataJSON = "metadata.json"
	PartManifestJSON = "manifest.json"
)

const (
	contentNamespace  = "urn:xmind:xmap:xmlns:content:2.0"
	metaNamespace     = "urn:xmind:xmap:xmlns:meta:2.0"
	manifestNamespace = "urn:xmind:xmap:xmlns:manifest:1.0"
	formatVersion     = "2.0"

	// CentralID is the id of the synthetic topic every map is rooted at.
	CentralID = "central"

	sheetID        = "sheet1"
	structureClass = "org.xmind.ui.logic.right"
	attachedTopics = "attached"
	creatorName    = "casemap"
)

// content.xml

type xmapContent struct {
	XMLName xml.Name   `xml:"urn:xmind:xmap:xmlns:content:2.0 xmap-content"`
	Version string     `xml:"version,attr"`
	Sheets  []xmlSheet `xml:"sheet"`
}

type xmlSheet struct {
	ID    string   `xml:"id,attr"`
	Topic xmlTopic `xml:"topic"`
	Title string   `xml:"title"`
}

type xmlTopic struct {
	ID             string       `xml:"id,attr"`
	StructureClass string       `xml:"structure-class,attr,omitempty"`
	Title          string       `xml:"title"`
	Children       *xmlChildren `xml:"children,omitempty"`
}

type xmlChildren struct {
	Topics []xmlTopicGroup `xml:"topics"`
}

type xmlTopicGroup struct {
	Type   string     `xml:"type,attr"`
	Topics []xmlTopic `xml:"topic"`
}

// attached returns the attached children of t, or nil.
func (t *xmlTopic) attached() []xmlTopic {
	if t.Children == nil {
		return nil
	}
	for _, g := range t.Children.Topics {
		if g.Type == attachedTopics {
			return g.Topics
		}
	}
	return nil
}

// meta.xml

type xmlMeta struct {
	XMLName xml.Name   `xml:"urn:xmind:xmap:xmlns:meta:2.0 meta"`
	Version string     `xml:"version,attr"`
	Creator xmlCreator `xml:"Creator"`
}

type xmlCreator struct {
	Name string `xml:"Name"`
}

// META-INF/manifest.xml

type xmlManifest struct {
	XMLName xml.Name       `xml:"urn:xmind:xmap:xmlns:manifest:1.0 manifest"`
	Entries []xmlFileEntry `xml:"file-entry"`
}

type xmlFileEntry struct {
	FullPath  string `xml:"full-path,attr"`
	MediaType string `xml:"media-type,attr"`
}

// JSON parts read by newer viewers.

type jsonSheet struct {
	ID        string    `json:"id"`
	Class     string    `json:"class"`
	Title     string    `json:"title"`
	RootTopic jsonTopic `json:"rootTopic"`
}

type jsonTopic struct {
	ID             string        `json:"id"`
	Class          string        `json:"class"`
	Title          string        `json:"title"`
	StructureClass string        `json:"structureClass,omitempty"`
	Children       *jsonChildren `json:"children,omitempty"`
}

type jsonChildren struct {
	Attached []jsonTopic `json:"attached"`
}

type jsonMetadata struct {
	Creator struct {
		Name string `json:"name"`
	} `json:"creator"`
}

type jsonManifest struct {
	FileEntries map[string]struct{} `json:"file-entries"`
}
