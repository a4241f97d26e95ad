package lookup

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"github.com/oschwald/geoip2-golang"

	"github.com/ilexum-group/sysreport/pkg/models"
)

// Database file names looked up in the GeoIP directory
const (
	CityDatabase = "GeoLite2-City.mmdb"
	ASNDatabase  = "GeoLite2-ASN.mmdb"
)

// GeoIPResolver answers geolocation queries from local MaxMind databases
type GeoIPResolver struct {
	city *geoip2.Reader
	asn  *geoip2.Reader
}

// OpenGeoIP opens the city database in dir and, when present, the ASN database
func OpenGeoIP(dir string) (*GeoIPResolver, error) {
	city, err := geoip2.Open(filepath.Join(dir, CityDatabase))
	if err != nil {
		return nil, fmt.Errorf("failed to open city database: %w", err)
	}

	r := &GeoIPResolver{city: city}
	asn, err := geoip2.Open(filepath.Join(dir, ASNDatabase))
	switch {
	case err == nil:
		r.asn = asn
	case !errors.Is(err, os.ErrNotExist):
		_ = city.Close()
		return nil, fmt.Errorf("failed to open asn database: %w", err)
	}
	return r, nil
}

// Resolve implements GeoResolver
func (r *GeoIPResolver) Resolve(ip string) (models.GeoInfo, error) {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return models.GeoInfo{}, fmt.Errorf("invalid ip address %q", ip)
	}

	rec, err := r.city.City(parsed)
	if err != nil {
		return models.GeoInfo{}, fmt.Errorf("city lookup: %w", err)
	}

	info := models.GeoInfo{
		IP:       ip,
		Country:  orNA(rec.Country.Names["en"]),
		Region:   models.NotAvailable,
		City:     orNA(rec.City.Names["en"]),
		Zip:      orNA(rec.Postal.Code),
		Lat:      models.NotAvailable,
		Lon:      models.NotAvailable,
		Timezone: orNA(rec.Location.TimeZone),
		ISP:      models.NotAvailable,
	}
	if len(rec.Subdivisions) > 0 {
		info.Region = orNA(rec.Subdivisions[0].Names["en"])
	}
	if rec.Location.Latitude != 0 || rec.Location.Longitude != 0 {
		info.Lat = strconv.FormatFloat(rec.Location.Latitude, 'f', -1, 64)
		info.Lon = strconv.FormatFloat(rec.Location.Longitude, 'f', -1, 64)
	}

	if r.asn != nil {
		if as, err := r.asn.ASN(parsed); err == nil {
			info.ISP = orNA(as.AutonomousSystemOrganization)
		}
	}
	return info, nil
}

// Close releases the databases
func (r *GeoIPResolver) Close() error {
	var errs []error
	if r.city != nil {
		errs = append(errs, r.city.Close())
	}
	if r.asn != nil {
		errs = append(errs, r.asn.Close())
	}
	return errors.Join(errs...)
}

func orNA(s string) string {
	if s == "" {
		return models.NotAvailable
	}
	return s
}
