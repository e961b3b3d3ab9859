package controllers

import (
	"errors"
	"net/http"

	"github.com/allinbuy/api/app/models"
	"github.com/allinbuy/api/app/repositories"
	"github.com/allinbuy/api/app/services"
	"github.com/allinbuy/api/pkg/resource"
	"github.com/allinbuy/api/pkg/response"
	"github.com/allinbuy/api/pkg/validate"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductsController serves the public catalogue and the admin product CRUD.
type ProductsController struct {
	products *services.ProductService
}

func NewProductsController(products *services.ProductService) *ProductsController {
	return &ProductsController{products: products}
}

// Index handles GET /api/productos.
func (c *ProductsController) Index(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	filter := repositories.ProductFilter{
		CategoryID: uint(queryInt(r, "categoria", 0)),
		Search:     r.URL.Query().Get("buscar"),
		MinPrice:   r.URL.Query().Get("precio_min"),
		MaxPrice:   r.URL.Query().Get("precio_max"),
		Featured:   r.URL.Query().Get("destacados") == "true",
		Page:       page,
		Limit:      limit,
	}

	products, pg, err := c.products.List(filter)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Could not list products")
		return
	}

	resource.CollectionOf(&productResource{products: c.products}, products).
		WithPagination(pg).
		Respond(w)
}

// Featured handles GET /api/productos/destacados.
func (c *ProductsController) Featured(w http.ResponseWriter, r *http.Request) {
	products, err := c.products.Featured(queryInt(r, "limit", 8))
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Could not list featured products")
		return
	}
	resource.CollectionOf(&productResource{products: c.products}, products).Respond(w)
}

// Show handles GET /api/productos/{id}.
func (c *ProductsController) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := uintParam(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	product, err := c.products.Find(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(w, "Producto no encontrado")
			return
		}
		response.Error(w, http.StatusInternalServerError, "Could not load product")
		return
	}
	response.Success(w, product)
}

// ShowBySlug handles GET /api/productos/slug/{slug}.
func (c *ProductsController) ShowBySlug(w http.ResponseWriter, r *http.Request) {
	product, err := c.products.FindBySlug(chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(w, "Producto no encontrado")
			return
		}
		response.Error(w, http.StatusInternalServerError, "Could not load product")
		return
	}
	response.Success(w, product)
}

type productInput struct {
	Name        string `json:"nombre"        validate:"required,max=255"`
	Description string `json:"descripcion"   validate:"nullable,max=2000"`
	Price       string `json:"precio"        validate:"required,numeric,gt=0"`
	SalePrice   string `json:"precio_oferta" validate:"nullable,numeric,gt=0"`
	Stock       int    `json:"stock"         validate:"gte=0"`
	SKU         string `json:"sku"           validate:"nullable,alpha_dash,max=50"`
	CategoryID  uint   `json:"categoria_id"  validate:"required,gt=0"`
	Featured    bool   `json:"destacado"     validate:"nullable,boolean"`
}

// Store handles POST /api/admin/productos.
func (c *ProductsController) Store(w http.ResponseWriter, r *http.Request) {
	var in productInput
	if err := decodeJSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		response.ValidationError(w, errs)
		return
	}

	price, err := decimal.NewFromString(in.Price)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid price")
		return
	}

	product := models.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       price,
		Stock:       in.Stock,
		SKU:         in.SKU,
		CategoryID:  in.CategoryID,
		Featured:    in.Featured,
	}
	if in.SalePrice != "" {
		sale, err := decimal.NewFromString(in.SalePrice)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "Invalid sale price")
			return
		}
		product.SalePrice = &sale
	}

	if err := c.products.Create(&product); err != nil {
		response.Error(w, http.StatusInternalServerError, "Could not create product")
		return
	}
	response.Created(w, "Producto creado", product)
}

// Update handles PUT /api/admin/productos/{id}.
func (c *ProductsController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := uintParam(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	product, err := c.products.Find(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(w, "Producto no encontrado")
			return
		}
		response.Error(w, http.StatusInternalServerError, "Could not load product")
		return
	}

	var in productInput
	if err := decodeJSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		response.ValidationError(w, errs)
		return
	}

	price, err := decimal.NewFromString(in.Price)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid price")
		return
	}

	product.Name = in.Name
	product.Description = in.Description
	product.Price = price
	product.Stock = in.Stock
	product.CategoryID = in.CategoryID
	product.Featured = in.Featured
	if in.SKU != "" {
		product.SKU = in.SKU
	}
	product.SalePrice = nil
	if in.SalePrice != "" {
		sale, err := decimal.NewFromString(in.SalePrice)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "Invalid sale price")
			return
		}
		product.SalePrice = &sale
	}

	if err := c.products.Update(&product); err != nil {
		response.Error(w, http.StatusInternalServerError, "Could not update product")
		return
	}
	response.Success(w, product)
}

// Destroy handles DELETE /api/admin/productos/{id}. The product is
// soft-deleted; historical order lines keep referencing it.
func (c *ProductsController) Destroy(w http.ResponseWriter, r *http.Request) {
	id, ok := uintParam(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid product id")
		return
	}
	if err := c.products.Deactivate(id); err != nil {
		response.Error(w, http.StatusInternalServerError, "Could not delete product")
		return
	}
	response.Message(w, "Producto eliminado")
}

// UploadImage handles POST /api/admin/productos/{id}/imagen (multipart).
func (c *ProductsController) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := uintParam(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid multipart body")
		return
	}
	_, header, err := r.FormFile("imagen")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Missing `imagen` file field")
		return
	}

	img, err := c.products.AttachImage(id, header, r.FormValue("principal") == "true")
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Could not store image")
		return
	}

	response.Created(w, "Imagen subida", map[string]interface{}{
		"imagen": img,
		"url":    c.products.ImageURL(img.Path),
	})
}
