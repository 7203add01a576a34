// Package catalog turns decoded cache records into library entries and
// keeps them in a local store.
package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/twinfer/pcsx2-gamelist/pkg/gamelist"
)

const (
	// Service identifies games imported from PCSX2.
	Service  = "pcsx2"
	Runner   = "pcsx2"
	Platform = "Sony PlayStation 2"

	coverURLPattern = "https://raw.githubusercontent.com/xlenore/ps2-covers/main/covers/%s.jpg"
)

// Game is a library entry built from one cache record.
type Game struct {
	Name     string          `json:"name" yaml:"name"`
	AppID    string          `json:"appid" yaml:"appid"`
	GameID   string          `json:"game_id" yaml:"game_id"`
	Service  string          `json:"service" yaml:"service"`
	Runner   string          `json:"runner" yaml:"runner"`
	Platform string          `json:"platform" yaml:"platform"`
	Path     string          `json:"path" yaml:"path"`
	CoverURL string          `json:"cover_url" yaml:"cover_url"`
	Details  json.RawMessage `json:"details" yaml:"-"`
	Record   gamelist.Record `json:"record" yaml:"record"`
}

type details struct {
	Path  string `json:"path"`
	AppID string `json:"appid"`
}

// GameFromRecord maps r to a Game. Records without a serial have no stable
// key and are reported as not usable.
func GameFromRecord(r gamelist.Record) (Game, bool) {
	if r.Serial == "" {
		return Game{}, false
	}
	d, err := json.Marshal(details{Path: r.Path, AppID: r.Serial})
	if err != nil {
		// two plain strings always marshal
		panic(fmt.Sprintf("catalog: marshaling details: %v", err))
	}
	return Game{
		Name:     DisplayName(r),
		AppID:    r.Serial,
		GameID:   r.Serial,
		Service:  Service,
		Runner:   Runner,
		Platform: Platform,
		Path:     r.Path,
		CoverURL: CoverURL(r.Serial),
		Details:  d,
		Record:   r,
	}, true
}

// DisplayName is the title, or the path without its extension when the
// cache has no title.
func DisplayName(r gamelist.Record) string {
	if r.Title != "" {
		return r.Title
	}
	return strings.TrimSuffix(r.Path, filepath.Ext(r.Path))
}

// CoverURL returns where the community cover for serial is published.
func CoverURL(serial string) string {
	return fmt.Sprintf(coverURLPattern, serial)
}

// Games maps every usable record, keeping cache order.
func Games(records []gamelist.Record) []Game {
	games := make([]Game, 0, len(records))
	for _, r := range records {
		if g, ok := GameFromRecord(r); ok {
			games = append(games, g)
		}
	}
	return games
}

// Load reads, decodes and maps the cache at path. A missing file yields
// ErrCacheNotFound; a file too short for a header yields
// gamelist.ErrHeaderTooShort.
func Load(ctx context.Context, path string, opts ...gamelist.Option) ([]Game, error) {
	data, err := ReadCache(path)
	if err != nil {
		return nil, err
	}
	records, err := gamelist.Decode(ctx, data, opts...)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return Games(records), nil
}
