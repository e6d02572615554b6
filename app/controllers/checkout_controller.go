package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/shashiranjanraj/sdscatalog/app/services"
	"github.com/shashiranjanraj/sdscatalog/pkg/bind"
	"github.com/shashiranjanraj/sdscatalog/pkg/logger"
	"github.com/shashiranjanraj/sdscatalog/pkg/response"
	"github.com/shashiranjanraj/sdscatalog/pkg/validate"
)

// CheckoutSchemaVersion is the only request schema accepted.
const CheckoutSchemaVersion = 1

type measurementInput struct {
	Unit string `json:"unit" validate:"nullable,in=g %"`
	Type string `json:"type" validate:"nullable,in=weight volume"`
}

// checkoutItemInput accepts the legacy percentage, mass and weight names;
// Normalise folds them into Quantity.
type checkoutItemInput struct {
	SdsID      uint     `json:"sds_id"   validate:"required"`
	Quantity   *float64 `json:"quantity" validate:"required,gt=0"`
	Percentage *float64 `json:"percentage,omitempty"`
	Mass       *float64 `json:"mass,omitempty"`
	Weight     *float64 `json:"weight,omitempty"`
}

type checkoutInput struct {
	SchemaVersion     int                 `json:"schema_version"     validate:"in=1"`
	ProductName       string              `json:"product_name"       validate:"required,max=512"`
	Destination       string              `json:"destination"        validate:"required,max=128"`
	CertificationDate string              `json:"certification_date" validate:"required,date"`
	Sensitivity       string              `json:"sensitivity"        validate:"required,in=sensitive confidential proprietary public"`
	Measurement       measurementInput    `json:"measurement"`
	Items             []checkoutItemInput `json:"items"              validate:"required,max=500,dive"`
}

// Normalise applies defaults and folds legacy quantity fields.
func (in *checkoutInput) Normalise() {
	if in.SchemaVersion == 0 {
		in.SchemaVersion = CheckoutSchemaVersion
	}
	in.Sensitivity = strings.ToLower(strings.TrimSpace(in.Sensitivity))
	in.Measurement.Unit = strings.TrimSpace(in.Measurement.Unit)
	in.Measurement.Type = strings.ToLower(strings.TrimSpace(in.Measurement.Type))

	legacyPercent := false
	for i := range in.Items {
		it := &in.Items[i]
		if it.Quantity != nil {
			continue
		}
		switch {
		case it.Percentage != nil:
			it.Quantity = it.Percentage
			legacyPercent = true
		case it.Mass != nil:
			it.Quantity = it.Mass
		case it.Weight != nil:
			it.Quantity = it.Weight
		}
	}
	if in.Measurement.Unit == "" && legacyPercent {
		in.Measurement.Unit = services.UnitPercent
	}
}

func (in *checkoutInput) request() (services.CheckoutRequest, error) {
	date, err := validate.ParseDate(in.CertificationDate)
	if err != nil {
		return services.CheckoutRequest{}, err
	}

	req := services.CheckoutRequest{
		ProductName:       strings.TrimSpace(in.ProductName),
		Destination:       strings.TrimSpace(in.Destination),
		CertificationDate: date,
		Sensitivity:       in.Sensitivity,
		Unit:              in.Measurement.Unit,
		MeasurementType:   in.Measurement.Type,
		Items:             make([]services.CheckoutItem, len(in.Items)),
	}
	for i, it := range in.Items {
		req.Items[i] = services.CheckoutItem{SdsID: it.SdsID, Quantity: *it.Quantity}
	}
	return req, nil
}

// CheckoutController assembles shipment packets.
type CheckoutController struct {
	checkout *services.CheckoutService
}

func NewCheckoutController(checkout *services.CheckoutService) *CheckoutController {
	return &CheckoutController{checkout: checkout}
}

// Checkout handles POST /api/v1/sds/checkout and streams the packet PDF.
func (c *CheckoutController) Checkout(w http.ResponseWriter, r *http.Request) {
	var in checkoutInput
	errs, err := bind.JSON(w, r, &in)
	if err != nil {
		respondBindError(w, err)
		return
	}
	if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	req, err := in.request()
	if err != nil {
		response.ValidationError(w, map[string]string{"certification_date": err.Error()})
		return
	}

	packet, err := c.checkout.Checkout(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("X-Packet-Pages", strconv.Itoa(packet.TotalPages))
	w.Header().Set("X-Packet-SHA256", packet.SHA256)
	name := fmt.Sprintf("%s.pdf", fileSafe(req.ProductName))
	if err := response.PDF(w, name, packet.PDF, packet.PDF.Size()); err != nil {
		logger.WithCtx(r.Context()).Warn("checkout: packet stream interrupted", "error", err)
	}
}

// fileSafe keeps letters, digits, dot, dash and underscore.
func fileSafe(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		case r == ' ':
			return '_'
		}
		return -1
	}, s)
	if s == "" {
		return "checkout"
	}
	return s
}
