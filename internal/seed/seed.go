// Package seed imports a layout description from YAML into the document
// store.
package seed

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zulandar/waybill/internal/fault"
	"github.com/zulandar/waybill/internal/models"
	"github.com/zulandar/waybill/internal/rules"
	"github.com/zulandar/waybill/internal/store"
)

// layoutFile is the YAML shape of a seed file. Entries use the same
// camelCase field names as the stored documents, so they decode through
// the record codec. Ids are optional; supplying them lets entries
// cross-reference each other.
type layoutFile struct {
	Stations    []store.Record `yaml:"stations"`
	AarTypes    []store.Record `yaml:"aarTypes"`
	Industries  []store.Record `yaml:"industries"`
	Routes      []store.Record `yaml:"routes"`
	Locomotives []store.Record `yaml:"locomotives"`
	Cars        []store.Record `yaml:"cars"`
}

// Result counts the records created per collection.
type Result struct {
	Stations    int
	AarTypes    int
	Industries  int
	Routes      int
	Locomotives int
	Cars        int
}

// Total returns the number of records created.
func (r Result) Total() int {
	return r.Stations + r.AarTypes + r.Industries + r.Routes + r.Locomotives + r.Cars
}

// ImportFile reads a YAML layout from path and imports it.
func ImportFile(ctx context.Context, st store.Store, path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seed: read %s: %w", path, err)
	}
	return Import(ctx, st, data)
}

// Import validates and creates every entity in the layout, in dependency
// order: stations and AAR types first, then industries, routes,
// locomotives, and cars. The whole file is validated before anything is
// written, so a bad file leaves the store untouched.
func Import(ctx context.Context, st store.Store, data []byte) (*Result, error) {
	var layout layoutFile
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return nil, fmt.Errorf("seed: parse: %w", err)
	}

	if err := validate(&layout); err != nil {
		return nil, err
	}

	var res Result
	groups := []struct {
		coll    string
		records []store.Record
		count   *int
	}{
		{store.Stations, layout.Stations, &res.Stations},
		{store.AarTypes, layout.AarTypes, &res.AarTypes},
		{store.Industries, layout.Industries, &res.Industries},
		{store.Routes, layout.Routes, &res.Routes},
		{store.Locomotives, layout.Locomotives, &res.Locomotives},
		{store.Cars, layout.Cars, &res.Cars},
	}
	for _, g := range groups {
		for _, rec := range g.records {
			if id, _ := rec["id"].(string); id == "" {
				rec["id"] = store.GenerateID()
			}
			if _, err := st.Create(ctx, g.coll, rec); err != nil {
				return nil, fault.Store(err, fmt.Sprintf("seed %s", g.coll)).
					WithIDs(fmt.Sprintf("%v", rec["id"]))
			}
			*g.count++
		}
	}
	return &res, nil
}

// validate decodes every entry through its typed model and runs the
// schema checks, plus the references that stay within the file.
func validate(layout *layoutFile) error {
	var details []string
	collect := func(entity string, i int, err error) {
		if err != nil {
			details = append(details, fmt.Sprintf("%s[%d]: %v", entity, i, err))
		}
	}

	stations := make(map[string]bool)
	for i, rec := range layout.Stations {
		s, err := models.FromRecord[models.Station](rec)
		if err != nil {
			collect("stations", i, err)
			continue
		}
		collect("stations", i, rules.ValidateStation(s))
		if s.ID != "" {
			stations[s.ID] = true
		}
	}
	for i, rec := range layout.AarTypes {
		a, err := models.FromRecord[models.AarType](rec)
		if err != nil {
			collect("aarTypes", i, err)
			continue
		}
		collect("aarTypes", i, rules.ValidateAarType(a))
	}
	industries := make(map[string]bool)
	for i, rec := range layout.Industries {
		ind, err := models.FromRecord[models.Industry](rec)
		if err != nil {
			collect("industries", i, err)
			continue
		}
		collect("industries", i, rules.ValidateIndustry(ind))
		if ind.StationID != "" && len(stations) > 0 && !stations[ind.StationID] {
			details = append(details, fmt.Sprintf("industries[%d]: station %q is not in this file", i, ind.StationID))
		}
		if ind.ID != "" {
			industries[ind.ID] = true
		}
	}
	routeNames := make(map[string]bool)
	for i, rec := range layout.Routes {
		r, err := models.FromRecord[models.Route](rec)
		if err != nil {
			collect("routes", i, err)
			continue
		}
		collect("routes", i, rules.ValidateRoute(r))
		for _, yard := range []string{r.OriginYard, r.TerminationYard} {
			if yard != "" && len(industries) > 0 && !industries[yard] {
				details = append(details, fmt.Sprintf("routes[%d]: yard %q is not in this file", i, yard))
			}
		}
		if r.Name != "" && routeNames[r.Name] {
			details = append(details, fmt.Sprintf("routes[%d]: duplicate route name %q", i, r.Name))
		}
		routeNames[r.Name] = true
	}
	locoIdentities := make(map[string]bool)
	dccAddresses := make(map[int]bool)
	for i, rec := range layout.Locomotives {
		l, err := models.FromRecord[models.Locomotive](rec)
		if err != nil {
			collect("locomotives", i, err)
			continue
		}
		collect("locomotives", i, rules.ValidateLocomotive(l))
		identity := l.ReportingMarks + " " + l.ReportingNumber
		if locoIdentities[identity] {
			details = append(details, fmt.Sprintf("locomotives[%d]: duplicate locomotive %s", i, identity))
		}
		locoIdentities[identity] = true
		if l.IsDCC {
			if dccAddresses[l.DCCAddress] {
				details = append(details, fmt.Sprintf("locomotives[%d]: dccAddress %d is already in use", i, l.DCCAddress))
			}
			dccAddresses[l.DCCAddress] = true
		}
	}
	carIdentities := make(map[string]bool)
	for i, rec := range layout.Cars {
		c, err := models.FromRecord[models.Car](rec)
		if err != nil {
			collect("cars", i, err)
			continue
		}
		collect("cars", i, rules.ValidateCar(c))
		identity := c.ReportingMarks + " " + c.ReportingNumber
		if carIdentities[identity] {
			details = append(details, fmt.Sprintf("cars[%d]: duplicate car %s", i, identity))
		}
		carIdentities[identity] = true
	}

	if len(details) > 0 {
		return fault.New(fault.InvalidArgument, "layout failed validation").WithDetails(details...)
	}
	return nil
}
