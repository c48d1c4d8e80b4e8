package console

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/odg-delivery/console/internal/api"
)

// University is a top-level delivery area
type University struct {
	ID   int64  `json:"id" validate:"required"`
	Name string `json:"name"`
}

// Campus belongs to a university
type Campus struct {
	ID           int64   `json:"id" validate:"required"`
	UniversityID int64   `json:"university_id"`
	Name         string  `json:"name"`
	BoundaryJSON *string `json:"boundary_json"`
}

// Zone is a delivery zone on a campus
type Zone struct {
	ID           int64   `json:"id" validate:"required"`
	CampusID     int64   `json:"campus_id"`
	Name         string  `json:"name"`
	BoundaryJSON *string `json:"boundary_json"`
}

// Geography is the full university, campus and zone listing
type Geography struct {
	Universities []University `json:"universities"`
	Campuses     []Campus     `json:"campuses"`
	Zones        []Zone       `json:"zones"`
}

// CampusesOf returns the campuses of one university
func (g Geography) CampusesOf(universityID int64) []Campus {
	var out []Campus
	for _, c := range g.Campuses {
		if c.UniversityID == universityID {
			out = append(out, c)
		}
	}
	return out
}

// ZonesOf returns the zones of one campus
func (g Geography) ZonesOf(campusID int64) []Zone {
	var out []Zone
	for _, z := range g.Zones {
		if z.CampusID == campusID {
			out = append(out, z)
		}
	}
	return out
}

type universityRequest struct {
	Name string `json:"name" validate:"required"`
}

type campusRequest struct {
	UniversityID int64  `json:"university_id" validate:"required,gt=0"`
	Name         string `json:"name" validate:"required"`
}

type zoneRequest struct {
	CampusID int64  `json:"campus_id" validate:"required,gt=0"`
	Name     string `json:"name" validate:"required"`
}

// Geography loads the three lists in parallel
func (s *Service) Geography(ctx context.Context) (Geography, error) {
	var geo Geography

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		geo.Universities, err = api.Get[[]University](ctx, s.client, "/admin/universities")
		return err
	})
	g.Go(func() error {
		var err error
		geo.Campuses, err = api.Get[[]Campus](ctx, s.client, "/admin/campuses")
		return err
	})
	g.Go(func() error {
		var err error
		geo.Zones, err = api.Get[[]Zone](ctx, s.client, "/admin/zones")
		return err
	})

	if err := g.Wait(); err != nil {
		return Geography{}, err
	}
	return geo, nil
}

// CreateUniversity adds a university
func (s *Service) CreateUniversity(ctx context.Context, name string) error {
	req := universityRequest{Name: name}
	if err := s.check(req); err != nil {
		return err
	}
	return s.post(ctx, "/admin/universities", req)
}

// CreateCampus adds a campus to a university
func (s *Service) CreateCampus(ctx context.Context, universityID int64, name string) error {
	req := campusRequest{UniversityID: universityID, Name: name}
	if err := s.check(req); err != nil {
		return err
	}
	return s.post(ctx, "/admin/campuses", req)
}

// CreateZone adds a zone to a campus
func (s *Service) CreateZone(ctx context.Context, campusID int64, name string) error {
	req := zoneRequest{CampusID: campusID, Name: name}
	if err := s.check(req); err != nil {
		return err
	}
	return s.post(ctx, "/admin/zones", req)
}
