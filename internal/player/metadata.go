package player

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/meta"
)

// Metadata holds song information.
type Metadata struct {
	Title  string
	Artist string
	Album  string
}

// ReadMetadata reads tags (ID3v2 for MP3, Vorbis comments for FLAC and
// OGG), falling back to the file name for the title.
func ReadMetadata(path string) Metadata {
	var m Metadata
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		m = readID3(path)
	case ".flac":
		m = readFLACComments(path)
	case ".ogg", ".oga":
		m = readOGGComments(path)
	}
	if m.Title == "" {
		base := filepath.Base(path)
		m.Title = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return m
}

func readID3(path string) Metadata {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return Metadata{}
	}
	defer tag.Close()
	return Metadata{
		Title:  strings.TrimSpace(tag.Title()),
		Artist: strings.TrimSpace(tag.Artist()),
		Album:  strings.TrimSpace(tag.Album()),
	}
}

func readFLACComments(path string) Metadata {
	stream, err := flac.ParseFile(path)
	if err != nil {
		return Metadata{}
	}
	defer stream.Close()

	for _, block := range stream.Blocks {
		if vc, ok := block.Body.(*meta.VorbisComment); ok {
			return fromComments(vc.Tags)
		}
	}
	return Metadata{}
}

func readOGGComments(path string) Metadata {
	f, err := os.Open(path)
	if err != nil {
		return Metadata{}
	}
	defer f.Close()

	r, err := oggvorbis.NewReader(f)
	if err != nil {
		return Metadata{}
	}
	var tags [][2]string
	for _, c := range r.CommentHeader().Comments {
		if k, v, ok := strings.Cut(c, "="); ok {
			tags = append(tags, [2]string{k, v})
		}
	}
	return fromComments(tags)
}

// fromComments maps Vorbis comment fields, which are case-insensitive.
func fromComments(tags [][2]string) Metadata {
	var m Metadata
	for _, tag := range tags {
		v := strings.TrimSpace(tag[1])
		switch strings.ToUpper(tag[0]) {
		case "TITLE":
			m.Title = v
		case "ARTIST":
			m.Artist = v
		case "ALBUM":
			m.Album = v
		}
	}
	return m
}
