package server

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"algovis/internal/page"
)

// PageHandler は可視化ページを返すハンドラ
type PageHandler struct {
	renderer *page.Renderer
	debug    bool
}

// Index はルートパスのハンドラ
func (h *PageHandler) Index(c *gin.Context) {
	body, err := h.renderer.Render(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		log.Printf("ページの描画に失敗しました [%s]: %v", c.GetString(requestIDKey), err)

		// デバッグ時のみ詳細を返す
		if h.debug {
			c.String(http.StatusInternalServerError, debugPage(c, err))
			c.Abort()
			return
		}
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", body)
}

// debugPage はデバッグ用のエラーページ本文を作成する
func debugPage(c *gin.Context, err error) string {
	var b strings.Builder

	fmt.Fprintf(&b, "500 Internal Server Error\n\n")
	fmt.Fprintf(&b, "Request:    %s %s\n", c.Request.Method, c.Request.URL.Path)
	fmt.Fprintf(&b, "Request ID: %s\n\n", c.GetString(requestIDKey))

	switch {
	case errors.Is(err, page.ErrTemplateNotFound):
		fmt.Fprintf(&b, "Cause: template resource not found\n\n")
	case errors.Is(err, page.ErrTemplateInvalid):
		fmt.Fprintf(&b, "Cause: template could not be parsed or executed\n\n")
	}

	fmt.Fprintf(&b, "Error chain:\n")
	for i, e := range unwrapChain(err) {
		fmt.Fprintf(&b, "  %d. %v\n", i+1, e)
	}
	return b.String()
}

// unwrapChain はエラーを外側から順に並べる
// 複数のエラーを包む場合は最後のもの（原因）をたどる
func unwrapChain(err error) []error {
	var chain []error
	for err != nil {
		chain = append(chain, err)
		switch x := err.(type) {
		case interface{ Unwrap() error }:
			err = x.Unwrap()
		case interface{ Unwrap() []error }:
			errs := x.Unwrap()
			if len(errs) == 0 {
				return chain
			}
			err = errs[len(errs)-1]
		default:
			return chain
		}
	}
	return chain
}
