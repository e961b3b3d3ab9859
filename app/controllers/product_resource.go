package controllers

import (
	"github.com/allinbuy/api/app/models"
	"github.com/allinbuy/api/app/services"
	"github.com/allinbuy/api/pkg/resource"
)

// productResource shapes catalogue listings. The detail endpoint returns
// the full model; listings stay lean and precompute the effective price so
// storefronts do not re-implement the sale-price rule.
type productResource struct {
	resource.Base
	products *services.ProductService
}

func (r *productResource) ToArray(v interface{}) resource.Map {
	p, ok := v.(models.Product)
	if !ok {
		return resource.Map{}
	}

	out := resource.Map{
		"id":           p.ID,
		"nombre":       p.Name,
		"slug":         p.Slug,
		"precio":       p.Price.StringFixed(2),
		"precio_final": p.EffectivePrice().StringFixed(2),
		"en_oferta":    p.OnSale(),
		"stock":        p.Stock,
		"destacado":    p.Featured,
	}

	if p.Category.ID != 0 {
		out["categoria"] = resource.Map{
			"id":     p.Category.ID,
			"nombre": p.Category.Name,
			"slug":   p.Category.Slug,
		}
	}

	for _, img := range p.Images {
		if img.Main {
			out["imagen"] = r.products.ImageURL(img.Path)
			break
		}
	}

	return out
}
