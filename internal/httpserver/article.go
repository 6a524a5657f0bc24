package httpserver

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"github.com/Skotchmaster/marketplace/internal/export"
	"github.com/Skotchmaster/marketplace/internal/logging"
	"github.com/Skotchmaster/marketplace/internal/media"
	authmw "github.com/Skotchmaster/marketplace/internal/middleware/auth"
	"github.com/Skotchmaster/marketplace/internal/service"
	"github.com/Skotchmaster/marketplace/internal/transport"
	"github.com/Skotchmaster/marketplace/internal/util"
)

const maxImageSize = 5 << 20

type ArticleHTTP struct {
	Svc    *service.CatalogService
	Store  media.Store
	Images *service.ImageReleaser
}

func isMultipart(c echo.Context) bool {
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm)
}

func formValue(form *multipart.Form, key string) (string, bool) {
	v, ok := form.Value[key]
	if !ok || len(v) == 0 {
		return "", false
	}
	return v[0], true
}

func formDecimal(form *multipart.Form, key string) (*decimal.Decimal, error) {
	v, ok := formValue(form, key)
	if !ok || strings.TrimSpace(v) == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(v))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid %s", service.ErrValidation, key)
	}
	return &d, nil
}

func formInt(form *multipart.Form, key string) (*int, error) {
	v, ok := formValue(form, key)
	if !ok || strings.TrimSpace(v) == "" {
		return nil, nil
	}
	n, err := cast.ToIntE(strings.TrimSpace(v))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid %s", service.ErrValidation, key)
	}
	return &n, nil
}

func formString(form *multipart.Form, key string) *string {
	v, ok := formValue(form, key)
	if !ok {
		return nil
	}
	return &v
}

// saveUploads checks every file before storing any of them. On a failure the
// files stored so far are removed again.
func (h *ArticleHTTP) saveUploads(ctx context.Context, files []*multipart.FileHeader) ([]string, error) {
	if len(files) > service.MaxImages {
		return nil, fmt.Errorf("%w: at most %d images", service.ErrValidation, service.MaxImages)
	}
	for _, fh := range files {
		if fh.Size > maxImageSize {
			return nil, fmt.Errorf("%w: image %q exceeds 5MB", service.ErrValidation, fh.Filename)
		}
		if _, err := media.Ext(fh.Filename); err != nil {
			return nil, fmt.Errorf("%w: %w", service.ErrValidation, err)
		}
	}

	refs := make([]string, 0, len(files))
	for _, fh := range files {
		ref, err := h.saveOne(ctx, fh)
		if err != nil {
			h.Images.Discard(ctx, refs)
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func (h *ArticleHTTP) saveOne(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	return h.Store.Save(ctx, fh.Filename, f)
}

func (h *ArticleHTTP) createRequest(c echo.Context) (transport.CreateArticleRequest, []string, error) {
	var req transport.CreateArticleRequest
	if !isMultipart(c) {
		if err := c.Bind(&req); err != nil {
			return req, nil, fmt.Errorf("%w: invalid body", service.ErrValidation)
		}
		return req, nil, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return req, nil, fmt.Errorf("%w: invalid multipart form", service.ErrValidation)
	}

	req.Title, _ = formValue(form, "title")
	req.Description, _ = formValue(form, "description")
	req.Condition, _ = formValue(form, "condition")
	req.Category, _ = formValue(form, "category")
	if req.Price, err = formDecimal(form, "price"); err != nil {
		return req, nil, err
	}
	if req.Stock, err = formInt(form, "stock"); err != nil {
		return req, nil, err
	}
	idx, err := formInt(form, "main_image_index")
	if err != nil {
		return req, nil, err
	}
	if idx != nil {
		req.MainImageIndex = *idx
	}

	uploaded, err := h.saveUploads(c.Request().Context(), form.File["images"])
	if err != nil {
		return req, nil, err
	}
	req.Images = uploaded
	return req, uploaded, nil
}

func (h *ArticleHTTP) updateRequest(c echo.Context) (transport.UpdateArticleRequest, []string, error) {
	var req transport.UpdateArticleRequest
	if !isMultipart(c) {
		if err := c.Bind(&req); err != nil {
			return req, nil, fmt.Errorf("%w: invalid body", service.ErrValidation)
		}
		return req, nil, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return req, nil, fmt.Errorf("%w: invalid multipart form", service.ErrValidation)
	}

	req.Title = formString(form, "title")
	req.Description = formString(form, "description")
	req.Condition = formString(form, "condition")
	req.Category = formString(form, "category")
	if req.Price, err = formDecimal(form, "price"); err != nil {
		return req, nil, err
	}
	if req.Stock, err = formInt(form, "stock"); err != nil {
		return req, nil, err
	}
	if req.MainImageIndex, err = formInt(form, "main_image_index"); err != nil {
		return req, nil, err
	}
	if keep, ok := form.Value["keep_images"]; ok {
		kept := make([]string, 0, len(keep))
		for _, ref := range keep {
			if ref = strings.TrimSpace(ref); ref != "" {
				kept = append(kept, ref)
			}
		}
		req.KeepImages = &kept
	}

	uploaded, err := h.saveUploads(c.Request().Context(), form.File["images"])
	if err != nil {
		return req, nil, err
	}
	req.NewImages = uploaded
	return req, uploaded, nil
}

func (h *ArticleHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "article.list")

	p := readPage(c)
	total, items, err := h.Svc.List(ctx, p.Offset, p.Limit)
	if err != nil {
		return serviceError(l, "list_articles_error", err)
	}
	return c.JSON(http.StatusOK, util.NewPage(items, p.Page, p.Limit, total))
}

func (h *ArticleHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "article.search")

	p := readPage(c)
	total, items, err := h.Svc.Search(ctx, c.QueryParam("q"), p.Offset, p.Limit)
	if err != nil {
		return serviceError(l, "search_articles_error", err)
	}
	return c.JSON(http.StatusOK, util.NewPage(items, p.Page, p.Limit, total))
}

func (h *ArticleHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "article.get")

	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(l, "get_article_error", "invalid id", err)
	}
	a, err := h.Svc.Get(ctx, id)
	if err != nil {
		return serviceError(l, "get_article_error", err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *ArticleHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "article.create")

	actorID, err := currentUser(c)
	if err != nil {
		return err
	}

	req, uploaded, err := h.createRequest(c)
	if err != nil {
		return serviceError(l, "create_article_error", err)
	}

	a, err := h.Svc.Create(ctx, actorID, req)
	if err != nil {
		h.Images.Discard(ctx, uploaded)
		return serviceError(l, "create_article_error", err)
	}

	l.Info("create_article_success", "article_id", a.ID, "images", len(a.Images))
	return c.JSON(http.StatusCreated, a)
}

func (h *ArticleHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "article.update")

	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(l, "update_article_error", "invalid id", err)
	}

	req, uploaded, err := h.updateRequest(c)
	if err != nil {
		return serviceError(l, "update_article_error", err)
	}

	a, err := h.Svc.Update(ctx, id, req)
	if err != nil {
		h.Images.Discard(ctx, uploaded)
		return serviceError(l, "update_article_error", err)
	}

	l.Info("update_article_success", "article_id", a.ID)
	return c.JSON(http.StatusOK, a)
}

func (h *ArticleHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "article.delete")

	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(l, "delete_article_error", "invalid id", err)
	}
	if err := h.Svc.Delete(ctx, id); err != nil {
		return serviceError(l, "delete_article_error", err)
	}

	l.Info("delete_article_success", "article_id", id, "by", c.Get(authmw.CtxUserID))
	return c.NoContent(http.StatusNoContent)
}

func (h *ArticleHTTP) ExportCSV(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "article.export_csv")

	articles, err := h.Svc.Export(ctx)
	if err != nil {
		return serviceError(l, "export_articles_error", err)
	}

	var buf bytes.Buffer
	if err := export.ArticlesCSV(&buf, articles); err != nil {
		return serviceError(l, "export_articles_error", err)
	}

	l.Info("export_articles_success", "articles", len(articles))
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="articles.csv"`)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
