package session

import (
	"errors"
	"strconv"

	"backend-mapfit/internal/workout"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		sess := svc.Start(c.Context(), userID(c))
		return c.Status(fiber.StatusCreated).JSON(sess.Snapshot())
	})

	r.Get("/:id", authMiddleware, func(c *fiber.Ctx) error {
		sess, err := lookup(c, svc)
		if err != nil {
			return err
		}
		return c.JSON(sess.Snapshot())
	})

	r.Post("/:id/location", authMiddleware, func(c *fiber.Ctx) error {
		sess, err := lookup(c, svc)
		if err != nil {
			return err
		}
		var report LocationReport
		if err := c.BodyParser(&report); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(svc.ReportLocation(sess, report))
	})

	r.Post("/:id/clicks", authMiddleware, func(c *fiber.Ctx) error {
		sess, err := lookup(c, svc)
		if err != nil {
			return err
		}
		var body struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		snap, err := svc.Click(sess, workout.Coords{body.Lat, body.Lng})
		if err != nil {
			return fiber.NewError(fiber.StatusConflict, err.Error())
		}
		return c.JSON(snap)
	})

	r.Post("/:id/workouts", authMiddleware, func(c *fiber.Ctx) error {
		sess, err := lookup(c, svc)
		if err != nil {
			return err
		}
		var in FormInput
		if err := c.BodyParser(&in); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		rec, err := svc.Submit(c.Context(), sess, in)
		switch {
		case errors.Is(err, ErrInvalidInput):
			return fiber.NewError(fiber.StatusBadRequest, invalidInputAlert)
		case errors.Is(err, ErrMapNotReady), errors.Is(err, ErrFormHidden):
			return fiber.NewError(fiber.StatusConflict, err.Error())
		case err != nil:
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(rec)
	})

	r.Get("/:id/workouts", authMiddleware, func(c *fiber.Ctx) error {
		sess, err := lookup(c, svc)
		if err != nil {
			return err
		}
		return c.JSON(svc.Workouts(sess))
	})

	r.Get("/:id/workouts/nearby", authMiddleware, func(c *fiber.Ctx) error {
		sess, err := lookup(c, svc)
		if err != nil {
			return err
		}
		lat, _ := strconv.ParseFloat(c.Query("lat"), 64)
		lng, _ := strconv.ParseFloat(c.Query("lng"), 64)
		radius, _ := strconv.ParseFloat(c.Query("radius_km"), 64)
		if radius == 0 {
			radius = 5
		}
		return c.JSON(svc.Nearby(sess, lat, lng, radius))
	})

	r.Post("/:id/focus", authMiddleware, func(c *fiber.Ctx) error {
		sess, err := lookup(c, svc)
		if err != nil {
			return err
		}
		var body struct {
			WorkoutID string `json:"workout_id"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		rec, found := svc.Focus(sess, body.WorkoutID)
		if !found {
			// unknown list targets are a silent no-op
			return c.JSON(fiber.Map{"found": false})
		}
		return c.JSON(fiber.Map{"found": true, "workout": rec})
	})

	r.Delete("/:id/workouts", authMiddleware, func(c *fiber.Ctx) error {
		sess, err := lookup(c, svc)
		if err != nil {
			return err
		}
		if err := svc.Reset(c.Context(), sess); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func lookup(c *fiber.Ctx, svc *Service) (*Session, error) {
	sess, err := svc.Get(c.Params("id"), userID(c))
	switch {
	case errors.Is(err, ErrNotFound):
		return nil, fiber.NewError(fiber.StatusNotFound, "session not found")
	case errors.Is(err, ErrForbidden):
		return nil, fiber.NewError(fiber.StatusForbidden, "session belongs to another user")
	case err != nil:
		return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return sess, nil
}

func userID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}
