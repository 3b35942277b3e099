package metaclient

import (
	"time"

	"github.com/example/metadata-bridge/catalog"
)

// MovieEntity mirrors the host media-server's movie item. Field names
// follow the host's entity model rather than the wire format.
type MovieEntity struct {
	Name            string
	Overview        string
	ProductionYear  int
	CommunityRating float32
	PremiereDate    time.Time
	PrimaryImageURL string
	Genres          []string
	Studios         []string
	Series          []string
	People          []catalog.Person
	ProviderIDs     map[string]string
}

// MapToEntity copies the fields present in md onto dst. A field absent in
// md leaves the destination value untouched, so repeated partial scrapes
// never regress previously known-good fields. Rating narrows from float64
// to the host's float32 with plain IEEE-754 conversion.
func MapToEntity(md *catalog.Metadata, dst *MovieEntity) {
	if md == nil || dst == nil {
		return
	}
	if md.Title != "" {
		dst.Name = md.Title
	}
	if md.Description != nil {
		dst.Overview = *md.Description
	}
	if md.Year != nil {
		dst.ProductionYear = *md.Year
	}
	if md.Rating != nil {
		dst.CommunityRating = float32(*md.Rating)
	}
	if md.ReleaseDate != nil {
		dst.PremiereDate = *md.ReleaseDate
	}
	if md.PrimaryImageURL != nil {
		dst.PrimaryImageURL = *md.PrimaryImageURL
	}
	if md.Genres != nil {
		dst.Genres = append([]string(nil), md.Genres...)
	}
	if md.Studios != nil {
		dst.Studios = append([]string(nil), md.Studios...)
	}
	if md.Series != nil {
		dst.Series = append([]string(nil), md.Series...)
	}
	if md.People != nil {
		dst.People = append([]catalog.Person(nil), md.People...)
	}
}
