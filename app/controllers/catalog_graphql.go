package controllers

import (
	"encoding/json"
	"net/http"

	gql "github.com/graphql-go/graphql"

	"github.com/lumenera/backend/app/models"
	"github.com/lumenera/backend/app/services"
	"github.com/lumenera/backend/pkg/graphql"
	"github.com/lumenera/backend/pkg/logger"
	"github.com/lumenera/backend/pkg/response"
)

// CatalogGraphQL exposes a read-only GraphQL view of the catalog:
//
//	{ products { name price rarities { Standard } } }
//	{ product(id: "...") { name image } }
type CatalogGraphQL struct {
	schema gql.Schema
}

func NewCatalogGraphQL(products *services.ProductService) *CatalogGraphQL {
	raritiesType := gql.NewObject(gql.ObjectConfig{
		Name: "Rarities",
		Fields: gql.Fields{
			"Standard": &gql.Field{Type: gql.Int},
			"Runed":    &gql.Field{Type: gql.Int},
			"Sacred":   &gql.Field{Type: gql.Int},
			"Cursed":   &gql.Field{Type: gql.Int},
		},
	})

	productType := gql.NewObject(gql.ObjectConfig{
		Name: "Product",
		Fields: gql.Fields{
			"id":               &gql.Field{Type: gql.String},
			"name":             &gql.Field{Type: gql.String},
			"description":      &gql.Field{Type: gql.String},
			"price":            &gql.Field{Type: gql.Float},
			"image":            &gql.Field{Type: gql.NewList(gql.String)},
			"category":         &gql.Field{Type: gql.String},
			"subCategory":      &gql.Field{Type: gql.String},
			"bestseller":       &gql.Field{Type: gql.Boolean},
			"latestCollection": &gql.Field{Type: gql.Boolean},
			"rarities":         &gql.Field{Type: raritiesType},
		},
	})

	rootQuery := gql.NewObject(gql.ObjectConfig{
		Name: "Query",
		Fields: gql.Fields{
			"products": &gql.Field{
				Type: gql.NewList(productType),
				Resolve: func(p gql.ResolveParams) (interface{}, error) {
					list, err := products.List(p.Context)
					if err != nil {
						return nil, err
					}
					out := make([]productSource, len(list))
					for i, item := range list {
						out[i] = newProductSource(item)
					}
					return out, nil
				},
			},
			"product": &gql.Field{
				Type: productType,
				Args: gql.FieldConfigArgument{
					"id": &gql.ArgumentConfig{Type: gql.NewNonNull(gql.String)},
				},
				Resolve: func(p gql.ResolveParams) (interface{}, error) {
					id, _ := p.Args["id"].(string)
					product, err := products.Single(p.Context, id)
					if err != nil {
						return nil, err
					}
					return newProductSource(product), nil
				},
			},
		},
	})

	schema, err := graphql.NewSchema(rootQuery)
	if err != nil {
		logger.Error("catalog graphql schema build failed", "error", err)
	}
	return &CatalogGraphQL{schema: schema}
}

// productSource flattens a Product for the default field resolver: the hex
// id as a plain string instead of an ObjectID.
type productSource struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	Price            float64         `json:"price"`
	Image            []string        `json:"image"`
	Category         string          `json:"category"`
	SubCategory      string          `json:"subCategory"`
	Rarities         models.Rarities `json:"rarities"`
	Bestseller       bool            `json:"bestseller"`
	LatestCollection bool            `json:"latestCollection"`
}

func newProductSource(p models.Product) productSource {
	return productSource{
		ID:               p.ID.Hex(),
		Name:             p.Name,
		Description:      p.Description,
		Price:            p.Price,
		Image:            p.Image,
		Category:         p.Category,
		SubCategory:      p.SubCategory,
		Rarities:         p.Rarities,
		Bestseller:       p.Bestseller,
		LatestCollection: p.LatestCollection,
	}
}

// ServeHTTP answers POST /api/graphql with the standard {data, errors} shape.
func (c *CatalogGraphQL) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Query     string                 `json:"query"`
		Variables map[string]interface{} `json:"variables"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Fail(w, "Invalid request body")
		return
	}

	result := gql.Do(gql.Params{
		Schema:         c.schema,
		RequestString:  body.Query,
		VariableValues: body.Variables,
		Context:        r.Context(),
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result) //nolint:errcheck
}
