package validate_test

import (
	"testing"

	"github.com/allinbuy/api/pkg/validate"
)

type checkoutInput struct {
	UserID        uint   `json:"usuario_id"  validate:"required,integer,gt=0"`
	PaymentMethod string `json:"metodo_pago" validate:"required,in=card,bank_transfer,cash,yape,plin"`
	ShippingNotes string `json:"notas"       validate:"nullable,max=500"`
}

func TestValidInput(t *testing.T) {
	errs := validate.Struct(checkoutInput{
		UserID:        7,
		PaymentMethod: "yape",
		ShippingNotes: "", // nullable, allowed to be empty
	})
	if validate.HasErrors(errs) {
		t.Errorf("expected no errors, got: %v", errs)
	}
}

func TestRequiredFails(t *testing.T) {
	errs := validate.Struct(checkoutInput{})
	if !validate.HasErrors(errs) {
		t.Error("expected required errors")
	}
	if _, ok := errs["usuario_id"]; !ok {
		t.Error("expected usuario_id to be required")
	}
	if _, ok := errs["metodo_pago"]; !ok {
		t.Error("expected metodo_pago to be required")
	}
}

func TestEmailRule(t *testing.T) {
	type in struct {
		Email string `json:"email" validate:"required,email"`
	}
	errs := validate.Struct(in{Email: "not-an-email"})
	if _, ok := errs["email"]; !ok {
		t.Error("expected email validation error")
	}
	errs = validate.Struct(in{Email: "valid@example.com"})
	if validate.HasErrors(errs) {
		t.Errorf("expected valid email to pass, got: %v", errs)
	}
}

func TestNumericBounds(t *testing.T) {
	type in struct {
		Qty int `json:"cantidad" validate:"required,gte=1,lte=99"`
	}
	if errs := validate.Struct(in{Qty: 150}); !validate.HasErrors(errs) {
		t.Error("expected quantity > 99 to fail")
	}
	if errs := validate.Struct(in{Qty: 3}); validate.HasErrors(errs) {
		t.Errorf("expected quantity 3 to pass, got: %v", errs)
	}
}

func TestInRule(t *testing.T) {
	type in struct {
		Method string `json:"metodo_pago" validate:"required,in=card,bank_transfer,cash,yape,plin"`
	}
	if errs := validate.Struct(in{Method: "bitcoin"}); !validate.HasErrors(errs) {
		t.Error("expected unknown payment method to fail")
	}
	if errs := validate.Struct(in{Method: "plin"}); validate.HasErrors(errs) {
		t.Errorf("expected plin to pass: %v", errs)
	}
}

func TestInFollowedByAnotherRule(t *testing.T) {
	type in struct {
		Status string `json:"estado" validate:"required,in=pending,processing,shipped,max=20"`
	}
	if errs := validate.Struct(in{Status: "processing"}); validate.HasErrors(errs) {
		t.Errorf("expected processing to pass: %v", errs)
	}
	if errs := validate.Struct(in{Status: "max"}); !validate.HasErrors(errs) {
		t.Error("expected value outside in= list to fail")
	}
}

func TestNullableSkipsRules(t *testing.T) {
	type in struct {
		Notes string `json:"notas" validate:"nullable,max=5"`
	}
	if errs := validate.Struct(in{Notes: ""}); validate.HasErrors(errs) {
		t.Errorf("expected empty nullable to pass: %v", errs)
	}
	if errs := validate.Struct(in{Notes: "way too long"}); !validate.HasErrors(errs) {
		t.Error("expected over-long notes to fail")
	}
}

func TestAlphaDashRule(t *testing.T) {
	type in struct {
		Slug string `json:"slug" validate:"required,alpha_dash"`
	}
	if errs := validate.Struct(in{Slug: "laptop-gamer_15"}); validate.HasErrors(errs) {
		t.Errorf("expected alpha_dash to pass: %v", errs)
	}
	if errs := validate.Struct(in{Slug: "laptop gamer!"}); !validate.HasErrors(errs) {
		t.Error("expected alpha_dash to fail for spaces/punctuation")
	}
}
