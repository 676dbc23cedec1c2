// Package services contains the core business logic of the stylist
// service: location resolution, weather, outfit generation, and the daily
// outfit cache that orchestrates them.
package services

import (
	"context"
	"net"

	"go.uber.org/zap"

	"github.com/fashionai/stylist-service/internal/core/domain"
	"github.com/fashionai/stylist-service/internal/core/ports"
)

// DefaultLocation is returned whenever a real lookup is impossible or
// fails. The product ships with Cairo as its home market default.
var DefaultLocation = domain.Location{
	City:        "Cairo",
	Country:     "Egypt",
	CountryCode: "EG",
	Lat:         30.0444,
	Lon:         31.2357,
	Approximate: true,
}

type locationService struct {
	client ports.GeoClient
	logger *zap.Logger
}

// NewLocationService creates a resolver backed by an IP-geolocation
// client. A nil client is allowed and behaves as if every lookup failed.
func NewLocationService(client ports.GeoClient, logger *zap.Logger) ports.LocationResolver {
	return &locationService{
		client: client,
		logger: logger,
	}
}

// Resolve maps a client IP to an approximate location. Empty, loopback,
// private, and unparseable addresses short-circuit to the default
// location without any network call.
func (s *locationService) Resolve(ctx context.Context, clientIP string) domain.Location {
	if !routable(clientIP) {
		s.logger.Debug("non-routable client IP, using default location",
			zap.String("client_ip", clientIP))

		return DefaultLocation
	}

	if s.client == nil {
		return DefaultLocation
	}

	res, err := s.client.Lookup(ctx, clientIP)

	if err != nil {
		s.logger.Warn("IP geolocation lookup failed, using default location",
			zap.String("client_ip", clientIP),
			zap.Error(err))

		return DefaultLocation
	}

	s.logger.Info("location resolved from IP",
		zap.String("city", res.City),
		zap.String("country", res.Country))

	return domain.Location{
		City:        res.City,
		Country:     res.Country,
		CountryCode: res.CountryCode,
		Lat:         res.Lat,
		Lon:         res.Lon,
		Approximate: false,
	}
}

// routable reports whether the address is worth sending to the lookup
// provider at all.
func routable(clientIP string) bool {
	if clientIP == "" {
		return false
	}

	ip := net.ParseIP(clientIP)

	if ip == nil {
		return false
	}

	if ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() || ip.IsLinkLocalUnicast() {
		return false
	}

	return true
}
