package controllers

import (
	"errors"
	"net/http"

	"github.com/allinbuy/api/app/models"
	"github.com/allinbuy/api/app/repositories"
	"github.com/allinbuy/api/app/services"
	"github.com/allinbuy/api/pkg/response"
	"github.com/allinbuy/api/pkg/validate"
	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

// CategoriesController serves the category tree. Reads are public; writes
// are admin-only.
type CategoriesController struct {
	categories *repositories.CategoryRepository
}

func NewCategoriesController(categories *repositories.CategoryRepository) *CategoriesController {
	return &CategoriesController{categories: categories}
}

// Index handles GET /api/categorias.
func (c *CategoriesController) Index(w http.ResponseWriter, r *http.Request) {
	categories, err := c.categories.All()
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Could not list categories")
		return
	}
	response.Success(w, categories)
}

// Show handles GET /api/categorias/{slug} and includes the product count.
func (c *CategoriesController) Show(w http.ResponseWriter, r *http.Request) {
	category, err := c.categories.FindBySlug(chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(w, "Categoría no encontrada")
			return
		}
		response.Error(w, http.StatusInternalServerError, "Could not load category")
		return
	}

	count, err := c.categories.ProductCount(category.ID)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Could not load category")
		return
	}

	response.Success(w, map[string]interface{}{
		"categoria": category,
		"productos": count,
	})
}

type categoryInput struct {
	Name        string `json:"nombre"      validate:"required,max=255"`
	Slug        string `json:"slug"        validate:"nullable,alpha_dash,max=255"`
	Description string `json:"descripcion" validate:"nullable,max=1000"`
}

// Store handles POST /api/admin/categorias.
func (c *CategoriesController) Store(w http.ResponseWriter, r *http.Request) {
	var in categoryInput
	if err := decodeJSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		response.ValidationError(w, errs)
		return
	}

	slug := in.Slug
	if slug == "" {
		slug = services.Slugify(in.Name)
	}

	category := models.Category{Name: in.Name, Slug: slug, Description: in.Description, Active: true}
	if err := c.categories.Create(&category); err != nil {
		response.Error(w, http.StatusInternalServerError, "Could not create category")
		return
	}
	response.Created(w, "Categoría creada", category)
}

// Update handles PUT /api/admin/categorias/{id}.
func (c *CategoriesController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := uintParam(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid category id")
		return
	}

	category, err := c.categories.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(w, "Categoría no encontrada")
			return
		}
		response.Error(w, http.StatusInternalServerError, "Could not load category")
		return
	}

	var in categoryInput
	if err := decodeJSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		response.ValidationError(w, errs)
		return
	}

	category.Name = in.Name
	category.Description = in.Description
	if in.Slug != "" {
		category.Slug = in.Slug
	}
	if err := c.categories.Update(&category); err != nil {
		response.Error(w, http.StatusInternalServerError, "Could not update category")
		return
	}
	response.Success(w, category)
}

// Destroy handles DELETE /api/admin/categorias/{id}. Categories that still
// hold products are refused.
func (c *CategoriesController) Destroy(w http.ResponseWriter, r *http.Request) {
	id, ok := uintParam(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid category id")
		return
	}

	count, err := c.categories.ProductCount(id)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Could not delete category")
		return
	}
	if count > 0 {
		response.Error(w, http.StatusConflict, "La categoría tiene productos asociados")
		return
	}

	if err := c.categories.Delete(id); err != nil {
		response.Error(w, http.StatusInternalServerError, "Could not delete category")
		return
	}
	response.Message(w, "Categoría eliminada")
}
