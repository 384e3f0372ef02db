package code

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithDataDoesNotMutateShared(t *testing.T) {
	c := Success.WithData(map[string]int{"n": 1})

	assert.True(t, c.HaveData())
	assert.False(t, Success.HaveData())
	assert.Nil(t, Success.Data())
	assert.Equal(t, Success.Code(), c.Code())
}

func TestWithDetailsKeepsData(t *testing.T) {
	c := ErrorInvalidParams.WithData("x").WithDetails("title is required")

	assert.Equal(t, "x", c.Data())
	assert.Equal(t, []string{"title is required"}, c.Details())
	assert.False(t, ErrorInvalidParams.HaveDetails())
	assert.Equal(t, http.StatusBadRequest, c.StatusCode())
}

func TestStatusCodeDefaultsToOK(t *testing.T) {
	assert.Equal(t, http.StatusOK, SuccessCreate.StatusCode())
	assert.Equal(t, http.StatusTooManyRequests, ErrorTooManyRequests.StatusCode())
}

func TestMessageByLang(t *testing.T) {
	assert.Equal(t, "Not found", ErrorNotFound.Msg())
	assert.Equal(t, "资源不存在", ErrorNotFound.Lang.GetMessageByLang("zh_cn"))
	assert.Equal(t, "资源不存在", ErrorNotFound.Lang.GetMessageByLang("zh"))
	assert.Equal(t, "Not found", ErrorNotFound.Lang.GetMessageByLang("fr"))
	assert.Equal(t, "fallback", lang{en: "fallback"}.GetMessageByLang("zh_cn"))
}
