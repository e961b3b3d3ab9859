package controllers

import (
	"net/http"

	"github.com/allinbuy/api/app/models"
	"github.com/allinbuy/api/app/repositories"
	gqlhttp "github.com/allinbuy/api/pkg/graphql"
	"github.com/graphql-go/graphql"
)

// NewGraphQLHandler builds the read-only catalogue schema served at
// /graphql. Storefronts use it to fetch products and categories in one
// round trip; all writes stay on the REST API.
func NewGraphQLHandler(products *repositories.ProductRepository, categories *repositories.CategoryRepository) (http.HandlerFunc, error) {
	categoryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Categoria",
		Fields: graphql.Fields{
			"id":     &graphql.Field{Type: graphql.Int},
			"nombre": &graphql.Field{Type: graphql.String},
			"slug":   &graphql.Field{Type: graphql.String},
		},
	})

	productType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Producto",
		Fields: graphql.Fields{
			"id":     &graphql.Field{Type: graphql.Int},
			"nombre": &graphql.Field{Type: graphql.String},
			"slug":   &graphql.Field{Type: graphql.String},
			"precio": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					product, ok := productSource(p)
					if !ok {
						return nil, nil
					}
					return product.EffectivePrice().StringFixed(2), nil
				},
			},
			"stock":     &graphql.Field{Type: graphql.Int},
			"destacado": &graphql.Field{Type: graphql.Boolean},
			"categoria": &graphql.Field{
				Type: categoryType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					product, ok := productSource(p)
					if !ok {
						return nil, nil
					}
					return product.Category, nil
				},
			},
		},
	})

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"productos": &graphql.Field{
				Type: graphql.NewList(productType),
				Args: graphql.FieldConfigArgument{
					"categoria": &graphql.ArgumentConfig{Type: graphql.Int},
					"buscar":    &graphql.ArgumentConfig{Type: graphql.String},
					"limit":     &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					filter := repositories.ProductFilter{Page: 1, Limit: 20}
					if limit, ok := p.Args["limit"].(int); ok && limit > 0 && limit <= 100 {
						filter.Limit = limit
					}
					if categoryID, ok := p.Args["categoria"].(int); ok && categoryID > 0 {
						filter.CategoryID = uint(categoryID)
					}
					if search, ok := p.Args["buscar"].(string); ok {
						filter.Search = search
					}

					items, _, err := products.List(filter)
					return items, err
				},
			},
			"destacados": &graphql.Field{
				Type: graphql.NewList(productType),
				Args: graphql.FieldConfigArgument{
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 8},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					limit, _ := p.Args["limit"].(int)
					if limit <= 0 || limit > 20 {
						limit = 8
					}
					return products.Featured(limit)
				},
			},
			"categorias": &graphql.Field{
				Type: graphql.NewList(categoryType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return categories.All()
				},
			},
		},
	})

	schema, err := gqlhttp.NewSchema(query)
	if err != nil {
		return nil, err
	}
	return gqlhttp.Handler(schema), nil
}

func productSource(p graphql.ResolveParams) (models.Product, bool) {
	product, ok := p.Source.(models.Product)
	return product, ok
}
