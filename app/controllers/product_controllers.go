package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/lumenera/backend/app/services"
	"github.com/lumenera/backend/pkg/response"
	"github.com/lumenera/backend/pkg/validate"
)

// maxProductFormSize caps the multipart product form (four images).
const maxProductFormSize = 32 << 20

// ProductController serves the catalog endpoints.
type ProductController struct {
	products *services.ProductService
}

func NewProductController(products *services.ProductService) *ProductController {
	return &ProductController{products: products}
}

func (c *ProductController) List(w http.ResponseWriter, r *http.Request) {
	products, err := c.products.List(r.Context())
	if err != nil {
		response.Fail(w, err.Error())
		return
	}
	response.OK(w, response.M{"products": products})
}

func (c *ProductController) Single(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProductID string `json:"productId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Fail(w, "Invalid request body")
		return
	}

	product, err := c.products.Single(r.Context(), body.ProductID)
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			response.Fail(w, "Product not found")
			return
		}
		response.Fail(w, err.Error())
		return
	}
	response.OK(w, response.M{"product": product})
}

// Add accepts the admin multipart form: text fields plus files image1..image4.
// The rarities field arrives as a JSON object of variant → count.
func (c *ProductController) Add(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxProductFormSize); err != nil {
		response.Fail(w, "Invalid multipart form")
		return
	}

	price, err := strconv.ParseFloat(r.FormValue("price"), 64)
	if err != nil {
		response.Fail(w, "Invalid price")
		return
	}

	rarities := map[string]int{}
	if raw := r.FormValue("rarities"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &rarities); err != nil {
			response.Fail(w, "Invalid rarities")
			return
		}
	}

	input := services.AddProductInput{
		Name:             r.FormValue("name"),
		Description:      r.FormValue("description"),
		Price:            price,
		Category:         r.FormValue("category"),
		SubCategory:      r.FormValue("subCategory"),
		Rarities:         rarities,
		Bestseller:       r.FormValue("bestseller") == "true",
		LatestCollection: r.FormValue("latestCollection") == "true",
	}
	if errs := validate.Struct(input); validate.HasErrors(errs) {
		response.ValidationError(w, errs)
		return
	}

	images, err := readImages(r)
	if err != nil {
		response.Fail(w, err.Error())
		return
	}

	if _, err := c.products.Add(r.Context(), input, images); err != nil {
		response.Fail(w, err.Error())
		return
	}
	response.Message(w, "Product Added")
}

// readImages collects the optional image1..image4 uploads in slot order.
func readImages(r *http.Request) ([]services.ImageUpload, error) {
	var images []services.ImageUpload
	for _, field := range []string{"image1", "image2", "image3", "image4"} {
		file, header, err := r.FormFile(field)
		if err == http.ErrMissingFile {
			continue
		}
		if err != nil {
			// A form without any file fields at all is fine too.
			if errors.Is(err, http.ErrNotMultipart) {
				return nil, nil
			}
			continue
		}
		content, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			return nil, err
		}
		images = append(images, services.ImageUpload{Name: header.Filename, Content: content})
	}
	return images, nil
}

func (c *ProductController) Remove(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Fail(w, "Invalid request body")
		return
	}

	if err := c.products.Remove(r.Context(), body.ID); err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			response.Fail(w, "Product not found")
			return
		}
		response.Fail(w, err.Error())
		return
	}
	response.Message(w, "Product Removed")
}
