package api

import (
	"github.com/sanverite/wildlife-sightings/internal/sighting"
)

// Route paths served by the API.
const (
	RouteSightings   = "/api/sightings"
	RouteVerified    = "/api/sightings/verified"
	RouteSpeciesList = "/api/sightings/species-list"
	RouteForest      = "/api/sightings/habitat/forest"
	RouteEagle       = "/api/sightings/search/eagle"
	RouteMoose       = "/api/sightings/find-index/moose"
	RouteRecent      = "/api/sightings/recent"
)

// RecentLimit is the number of entries returned by the recent route.
const RecentLimit = 3

// query turns a freshly loaded collection into a response body.
type query func(records []sighting.Record) any

type dataRoute struct {
	path  string
	query query
}

// dataRoutes lists the data routes in the order they are advertised.
var dataRoutes = []dataRoute{
	{RouteSightings, func(rs []sighting.Record) any {
		return sighting.All(rs)
	}},
	{RouteVerified, func(rs []sighting.Record) any {
		return sighting.Verified(rs)
	}},
	{RouteSpeciesList, func(rs []sighting.Record) any {
		return sighting.SpeciesList(rs)
	}},
	{RouteForest, func(rs []sighting.Record) any {
		return sighting.ByHabitat(rs, "forest")
	}},
	{RouteEagle, func(rs []sighting.Record) any {
		r, ok := sighting.FirstSpeciesContaining(rs, "eagle")
		return FromSearch(r, ok, NoEagleMessage)
	}},
	{RouteMoose, func(rs []sighting.Record) any {
		return FromIndex(rs, sighting.IndexOfSpecies(rs, "Moose"))
	}},
	{RouteRecent, func(rs []sighting.Record) any {
		return sighting.Recent(rs, RecentLimit)
	}},
}

// AvailableRoutes returns the routes listed in 404 responses.
func AvailableRoutes() []string {
	out := make([]string, 0, len(dataRoutes)+1)
	out = append(out, "GET /")
	for _, r := range dataRoutes {
		out = append(out, "GET "+r.path)
	}
	return out
}
