package api

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/copier"
	"github.com/liip/sheriff"
	"github.com/tagkartan/tagkartan/pkg/crossings"
	"github.com/tagkartan/tagkartan/pkg/tracker"
)

// SetupServer serves the reconciled map state: marker instructions, popup
// content, the filter control list and the crossing geometry.
func SetupServer(listen string, manager *tracker.Manager, crossingSet *crossings.Set) error {
	webApp := fiber.New()
	webApp.Use(NewLogger())

	group := webApp.Group("/map")

	group.Get("/markers", func(c *fiber.Ctx) error {
		return listMarkers(c, manager)
	})
	group.Get("/markers/:ident", func(c *fiber.Ctx) error {
		return getMarker(c, manager)
	})
	group.Get("/markers/:ident/details", func(c *fiber.Ctx) error {
		return getMarkerDetails(c, manager)
	})
	group.Get("/products", func(c *fiber.Ctx) error {
		return listProducts(c, manager)
	})
	group.Get("/count", func(c *fiber.Ctx) error {
		return getCount(c, manager)
	})
	group.Get("/crossings", func(c *fiber.Ctx) error {
		return listCrossings(c, crossingSet)
	})
	group.Post("/filter", func(c *fiber.Ctx) error {
		return setFilter(c, manager)
	})

	return webApp.Listen(listen)
}

func listMarkers(c *fiber.Ctx, manager *tracker.Manager) error {
	markers := manager.Snapshot()

	markersReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic"},
	}, markers)

	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sheriff could not reduce markers",
		})
	}

	return c.JSON(markersReduced)
}

// trainDetail is the merged marker + record view for one train.
type trainDetail struct {
	TrainIdent     string `json:"train_ident"`
	TechnicalIdent string `json:"technical_ident"`

	Operator    string `json:"operator"`
	Product     string `json:"product"`
	Destination string `json:"destination"`

	Location        string `json:"location"`
	LocationName    string `json:"location_name"`
	DeltaMinutes    int    `json:"delta_minutes"`
	HasScheduleInfo bool   `json:"has_schedule_info"`

	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Bearing   float64 `json:"bearing"`
	Speed     float64 `json:"speed"`

	Status    string `json:"status"`
	PopupHTML string `json:"popup_html"`
}

func getMarker(c *fiber.Ctx, manager *tracker.Manager) error {
	trainIdent := c.Params("ident")

	marker, found := manager.Marker(trainIdent)
	if !found {
		c.SendStatus(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"error": "Could not find a marker matching train ident",
		})
	}

	record := manager.Record(trainIdent)

	var detail trainDetail
	copier.Copy(&detail, &record)
	copier.Copy(&detail, &marker)
	detail.LocationName = manager.LocationName(record.Location)

	return c.JSON(detail)
}

func getMarkerDetails(c *fiber.Ctx, manager *tracker.Manager) error {
	trainIdent := c.Params("ident")

	record, nextStop := manager.FetchDetails(c.Context(), trainIdent)

	response, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"detail"},
	}, struct {
		Record   interface{} `json:"record" groups:"detail"`
		NextStop interface{} `json:"next_stop" groups:"detail"`
	}{
		Record:   record,
		NextStop: nextStop,
	})

	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sheriff could not reduce train details",
		})
	}

	return c.JSON(response)
}

func listProducts(c *fiber.Ctx, manager *tracker.Manager) error {
	return c.JSON(fiber.Map{
		"products": manager.Products(),
	})
}

func getCount(c *fiber.Ctx, manager *tracker.Manager) error {
	visibleCount := manager.VisibleCount()

	return c.JSON(fiber.Map{
		"visible": visibleCount,
		"text":    fmt.Sprintf("Showing %d trains", visibleCount),
	})
}

func listCrossings(c *fiber.Ctx, crossingSet *crossings.Set) error {
	return c.JSON(crossingSet.Load(c.Context()))
}

func setFilter(c *fiber.Ctx, manager *tracker.Manager) error {
	var request struct {
		Product string `json:"product"`
	}

	if err := c.BodyParser(&request); err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	manager.SetCategoryFilter(request.Product)

	return c.JSON(fiber.Map{
		"filter": request.Product,
	})
}
