package handler

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"volunteer-match/internal/delivery/http/dto"
	"volunteer-match/internal/delivery/http/middleware"
	"volunteer-match/internal/domain/domainerr"
	"volunteer-match/internal/pkg/jwt"
)

var (
	adminOnly       = middleware.RequireRole(jwt.RoleAdmin)
	missionManagers = middleware.RequireRole(jwt.RoleOrganization, jwt.RoleAdmin)
	volunteersOnly  = middleware.RequireRole(jwt.RoleVolunteer)
)

func uuidParam(c fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, middleware.FromDomain(domainerr.Invalid(name, name+" must be a UUID"))
	}
	return id, nil
}

func queryBool(c fiber.Ctx, key string) (*bool, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, middleware.FromDomain(domainerr.Invalid(key, key+" must be a boolean"))
	}
	return &v, nil
}

func queryFlag(c fiber.Ctx, key string) (bool, error) {
	return queryFlagOr(c, key, false)
}

// queryFlagOr is queryFlag with def used when the parameter is absent.
func queryFlagOr(c fiber.Ctx, key string, def bool) (bool, error) {
	v, err := queryBool(c, key)
	if err != nil || v == nil {
		return def, err
	}
	return *v, nil
}

func queryInt(c fiber.Ctx, key string) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, middleware.FromDomain(domainerr.Invalid(key, key+" must be a non-negative integer"))
	}
	return v, nil
}

func queryUUID(c fiber.Ctx, key string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, middleware.FromDomain(domainerr.Invalid(key, key+" must be a UUID"))
	}
	return &id, nil
}

func decode(c fiber.Ctx, out any) error {
	if err := dto.Decode(c.Body(), out); err != nil {
		return middleware.FromDomain(err)
	}
	return nil
}

func caller(c fiber.Ctx) (uuid.UUID, error) {
	id, _, ok := middleware.Caller(c)
	if !ok {
		return uuid.Nil, middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}
	return id, nil
}
