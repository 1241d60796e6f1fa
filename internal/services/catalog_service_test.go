package services_test

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sweetindulgence/internal/domain"
	"sweetindulgence/internal/repos"
	"sweetindulgence/internal/services"
)

func user(t *testing.T, e *env, id string) *domain.User {
	t.Helper()
	u, err := e.accounts.Profile(context.Background(), id)
	require.NoError(t, err)
	return u
}

// pngUpload builds a multipart file header holding a tiny PNG.
func pngUpload(t *testing.T, name string) *multipart.FileHeader {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 200, A: 255})
	var pic bytes.Buffer
	require.NoError(t, png.Encode(&pic, img))

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, err := w.CreateFormFile("image", name)
	require.NoError(t, err)
	_, err = fw.Write(pic.Bytes())
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["image"][0]
}

func TestCreateProduct_WithImage(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	baker := user(t, e, "u-baker")

	p, err := e.catalog.CreateProduct(ctx, baker, services.ProductForm{
		Name: "Lemon Tart", Description: "Sharp and sweet", Price: "4.999", SalePrice: "3.50",
		CategoryID: "pastries", StockQuantity: "12", IsFeatured: "true",
	}, pngUpload(t, "tart.png"))
	require.NoError(t, err)

	assert.Equal(t, "s-bea", p.StoreID)
	assert.Equal(t, "5.00", p.Price.StringFixed(2))
	assert.True(t, p.SalePrice.Valid)
	assert.True(t, p.IsFeatured)
	assert.True(t, p.IsActive)
	require.Len(t, p.Images, 1)
	assert.True(t, p.Images[0].IsPrimary)
	assert.Equal(t, p.Images[0].ImageURL, p.PrimaryImage)
	assert.Contains(t, p.PrimaryImage, "/uploads/products/")

	got, err := e.catalog.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lemon Tart", got.Name)
	assert.Equal(t, "Pastries", got.CategoryName)
}

func TestCreateProduct_Rejections(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	baker := user(t, e, "u-baker")
	base := services.ProductForm{Name: "Bun", Description: "Soft", Price: "2.00", CategoryID: "breads", StockQuantity: "3"}

	missing := base
	missing.Description = ""
	_, err := e.catalog.CreateProduct(ctx, baker, missing, nil)
	assert.ErrorIs(t, err, domain.ErrInvalid)

	badNum := base
	badNum.Price = "two"
	_, err = e.catalog.CreateProduct(ctx, baker, badNum, nil)
	assert.EqualError(t, err, "Invalid numeric values")

	badSale := base
	badSale.SalePrice = "2.00"
	_, err = e.catalog.CreateProduct(ctx, baker, badSale, nil)
	assert.ErrorIs(t, err, domain.ErrInvalid)

	badCat := base
	badCat.CategoryID = "sushi"
	_, err = e.catalog.CreateProduct(ctx, baker, badCat, nil)
	assert.ErrorIs(t, err, domain.ErrInvalid)

	_, err = e.catalog.CreateProduct(ctx, user(t, e, "u-carol"), base, nil)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestListProducts_FiltersSortsAndPages(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	rows, page, err := e.catalog.ListProducts(ctx, services.ProductQuery{Sort: "price_asc"})
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, 4, page.Total)
	assert.Equal(t, "p-chocchip", rows[0].ID)
	assert.Equal(t, "p-redvelvet", rows[3].ID)

	rows, _, err = e.catalog.ListProducts(ctx, services.ProductQuery{CategoryID: "breads"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Breads", rows[0].CategoryName)

	rows, _, err = e.catalog.ListProducts(ctx, services.ProductQuery{Search: "  CROISS "})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "p-croissant", rows[0].ID)

	rows, page, err = e.catalog.ListProducts(ctx, services.ProductQuery{Page: 2, Limit: 3})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, 2, page.Pages)
}

func TestUpdateAndDeleteProduct(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	baker := user(t, e, "u-baker")

	var patch services.ProductPatch
	require.NoError(t, json.Unmarshal([]byte(`{"price": 7.25, "sale_price": 6, "stock_quantity": 9}`), &patch))
	p, err := e.catalog.UpdateProduct(ctx, baker, "p-sourdough", patch)
	require.NoError(t, err)
	assert.Equal(t, "7.25", p.Price.StringFixed(2))
	assert.Equal(t, "6.00", p.EffectivePrice().StringFixed(2))
	assert.Equal(t, 9, p.StockQuantity)

	patch = services.ProductPatch{}
	require.NoError(t, json.Unmarshal([]byte(`{"sale_price": null}`), &patch))
	p, err = e.catalog.UpdateProduct(ctx, baker, "p-sourdough", patch)
	require.NoError(t, err)
	assert.False(t, p.SalePrice.Valid)

	_, err = e.catalog.UpdateProduct(ctx, user(t, e, "u-carol"), "p-sourdough", patch)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, e.catalog.DeleteProduct(ctx, baker, "p-sourdough"))
	_, err = e.catalog.GetProduct(ctx, "p-sourdough")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	var active bool
	require.NoError(t, e.db.Get(&active, `SELECT is_active FROM products WHERE product_id = 'p-sourdough'`))
	assert.False(t, active)
}

func TestUpdateProduct_KeepsConcurrentStockDecrement(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	prods := repos.NewProductRepo(e.db)

	// a row loaded before a checkout commits must not write its stock back
	stale, err := prods.Get(ctx, "p-redvelvet")
	require.NoError(t, err)
	require.Equal(t, 4, stale.StockQuantity)

	_, err = e.orders.Place(ctx, "u-carol", checkout("96.00",
		services.OrderLine{ProductID: "p-redvelvet", Quantity: 3}))
	require.NoError(t, err)
	require.Equal(t, 1, e.stock(t, "p-redvelvet"))

	stale.Name = "Red Velvet Layer Cake"
	require.NoError(t, prods.Update(ctx, stale))
	assert.Equal(t, 1, e.stock(t, "p-redvelvet"))

	name := "Red Velvet"
	p, err := e.catalog.UpdateProduct(ctx, user(t, e, "u-baker"), "p-redvelvet", services.ProductPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, 1, p.StockQuantity)
	assert.Equal(t, 1, e.stock(t, "p-redvelvet"))

	restock := 12
	p, err = e.catalog.UpdateProduct(ctx, user(t, e, "u-baker"), "p-redvelvet", services.ProductPatch{StockQuantity: &restock})
	require.NoError(t, err)
	assert.Equal(t, 12, p.StockQuantity)
	assert.Equal(t, 12, e.stock(t, "p-redvelvet"))
}

func TestProductStats(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	st, err := e.catalog.Stats(ctx, user(t, e, "u-baker"))
	require.NoError(t, err)
	assert.Equal(t, 4, st.Total)
	assert.Equal(t, 2, st.Featured)
	assert.Equal(t, 1, st.LowStock)

	st, err = e.catalog.Stats(ctx, user(t, e, "u-carol"))
	require.NoError(t, err)
	assert.Zero(t, st.Total)

	featured, err := e.catalog.Featured(ctx, user(t, e, "u-baker"))
	require.NoError(t, err)
	assert.Len(t, featured, 2)
}

func TestStores(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	baker := user(t, e, "u-baker")

	_, err := e.stores.Create(ctx, baker, services.StoreInput{})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = e.stores.Create(ctx, user(t, e, "u-carol"), services.StoreInput{})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	st, err := e.stores.Check(ctx, baker)
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, "s-bea", st.ID)
	assert.Equal(t, "07:00-15:00", st.OpeningHours["monday"])

	name := "Bea's Bread Bar"
	st, err = e.stores.Update(ctx, baker, "s-bea", services.StoreInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, st.Name)
	assert.Equal(t, "12 Mill Lane", st.Address)

	_, err = e.stores.Update(ctx, user(t, e, "u-admin"), "s-bea", services.StoreInput{Name: &name})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestStoreCreate_Defaults(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	s, err := e.auth.RegisterCustomer(ctx, signup("newbaker@example.test"))
	require.NoError(t, err)
	_, err = e.db.Exec(`UPDATE users SET role = 'supplier' WHERE user_id = ?`, s.User.ID)
	require.NoError(t, err)
	sup := user(t, e, s.User.ID)

	none, err := e.stores.Check(ctx, sup)
	require.NoError(t, err)
	assert.Nil(t, none)

	st, err := e.stores.Create(ctx, sup, services.StoreInput{})
	require.NoError(t, err)
	assert.Equal(t, "My Bakery Shop", st.Name)
	assert.Equal(t, "555-0142", st.Phone)
	assert.Equal(t, "newbaker@example.test", st.Email)
}
