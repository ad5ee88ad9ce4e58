package handler

import (
	"github.com/gofiber/fiber/v3"

	"volunteer-match/internal/delivery/http/dto"
	"volunteer-match/internal/delivery/http/middleware"
	"volunteer-match/internal/pkg/response"
	"volunteer-match/internal/usecase"
)

type VerificationHandler struct {
	uc usecase.VerificationUsecase
}

func NewVerificationHandler(uc usecase.VerificationUsecase) *VerificationHandler {
	return &VerificationHandler{uc: uc}
}

func (h *VerificationHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("/me/skills/:id/verification-requests", volunteersOnly, h.Request)
	r.Get("/me/verification-requests", volunteersOnly, h.ListMine)
	r.Post("/me/verification-requests/:id/resubmit", volunteersOnly, h.Resubmit)

	grp := r.Group("/verification-requests")
	grp.Get("/", adminOnly, h.ListOpen)
	grp.Get("/statistics", adminOnly, h.Statistics)
	grp.Get("/:id", adminOnly, h.Get)
	grp.Post("/:id/start-review", adminOnly, h.StartReview)
	grp.Post("/:id/review", adminOnly, h.Review)

	vs := r.Group("/volunteer-skills/:id")
	vs.Get("/verification-requests", adminOnly, h.ListForSkill)
	vs.Post("/verify", adminOnly, h.DirectVerify)
	vs.Post("/reject", adminOnly, h.DirectReject)
}

func (h *VerificationHandler) Request(c fiber.Ctx) error {
	volunteerID, err := caller(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.EvidenceRequest
	if err := decode(c, &req); err != nil {
		return err
	}

	created, err := h.uc.RequestVerification(c.Context(), volunteerID, id, req.Evidence())
	if err != nil {
		return middleware.FromDomain(err)
	}
	return response.Success(c, fiber.StatusCreated, "Verification requested", dto.VolunteerVerificationRequestFrom(created))
}

func (h *VerificationHandler) Resubmit(c fiber.Ctx) error {
	volunteerID, err := caller(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.EvidenceRequest
	if err := decode(c, &req); err != nil {
		return err
	}

	updated, err := h.uc.Resubmit(c.Context(), volunteerID, id, req.Evidence())
	if err != nil {
		return middleware.FromDomain(err)
	}
	return response.Success(c, fiber.StatusOK, "Verification resubmitted", dto.VolunteerVerificationRequestFrom(updated))
}

func (h *VerificationHandler) ListMine(c fiber.Ctx) error {
	volunteerID, err := caller(c)
	if err != nil {
		return err
	}
	items, err := h.uc.ListRequestsByVolunteer(c.Context(), volunteerID)
	if err != nil {
		return middleware.FromDomain(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK,
		dto.VerificationRequestsFrom(items, dto.VolunteerVerificationRequestFrom))
}

func (h *VerificationHandler) ListOpen(c fiber.Ctx) error {
	limit, err := queryInt(c, "limit")
	if err != nil {
		return err
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		return err
	}
	items, err := h.uc.ListOpenRequests(c.Context(), limit, offset)
	if err != nil {
		return middleware.FromDomain(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK,
		dto.VerificationRequestsFrom(items, dto.VerificationRequestFrom))
}

func (h *VerificationHandler) Get(c fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	req, err := h.uc.GetRequest(c.Context(), id)
	if err != nil {
		return middleware.FromDomain(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.VerificationRequestFrom(req))
}

func (h *VerificationHandler) StartReview(c fiber.Ctx) error {
	reviewerID, err := caller(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	req, err := h.uc.StartReview(c.Context(), id, reviewerID)
	if err != nil {
		return middleware.FromDomain(err)
	}
	return response.Success(c, fiber.StatusOK, "Review started", dto.VerificationRequestFrom(req))
}

func (h *VerificationHandler) Review(c fiber.Ctx) error {
	reviewerID, err := caller(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.ReviewRequest
	if err := decode(c, &req); err != nil {
		return err
	}

	out, err := h.uc.ReviewRequest(c.Context(), id, req.Input(reviewerID))
	if err != nil {
		return middleware.FromDomain(err)
	}
	return response.Success(c, fiber.StatusOK, "Review recorded", dto.ReviewOutcomeFrom(out))
}

func (h *VerificationHandler) ListForSkill(c fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	items, err := h.uc.ListRequestsForSkill(c.Context(), id)
	if err != nil {
		return middleware.FromDomain(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK,
		dto.VerificationRequestsFrom(items, dto.VerificationRequestFrom))
}

func (h *VerificationHandler) direct(c fiber.Ctx, approve bool) error {
	reviewerID, err := caller(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.DirectDecisionRequest
	if len(c.Body()) > 0 {
		if err := decode(c, &req); err != nil {
			return err
		}
	}

	in := usecase.DirectDecisionInput{ReviewerID: reviewerID, Notes: req.Notes}
	decide := h.uc.DirectReject
	if approve {
		decide = h.uc.DirectVerify
	}
	vs, err := decide(c.Context(), id, in)
	if err != nil {
		return middleware.FromDomain(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.VolunteerSkillFrom(vs))
}

func (h *VerificationHandler) DirectVerify(c fiber.Ctx) error {
	return h.direct(c, true)
}

func (h *VerificationHandler) DirectReject(c fiber.Ctx) error {
	return h.direct(c, false)
}

func (h *VerificationHandler) Statistics(c fiber.Ctx) error {
	st, err := h.uc.RequestStatistics(c.Context())
	if err != nil {
		return middleware.FromDomain(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, st)
}
