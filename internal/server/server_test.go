package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docgen/internal/config"
	"git.home.luguber.info/inful/docgen/internal/document"
	"git.home.luguber.info/inful/docgen/internal/generator"
	"git.home.luguber.info/inful/docgen/internal/store"
	"git.home.luguber.info/inful/docgen/internal/workflow"
)

const testOutlineJSON = `{
  "outline": [
    {"title": "基础概念", "content": ["定义与起源", "关键术语", "发展脉络"]},
    {"title": "核心技术", "content": ["算法原理", "系统架构", "工程实践"]},
    {"title": "应用与展望", "content": ["行业应用", "现存挑战", "未来方向"]}
  ],
  "estimated_pages": 10
}`

func scriptedGenerator(title, outlineJSON, sectionBody string) generator.TextGenerator {
	return generator.GeneratorFunc(func(_ context.Context, prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "标题生成专家"):
			return title, nil
		case strings.Contains(prompt, "大纲设计专家"):
			return outlineJSON, nil
		default:
			return sectionBody, nil
		}
	})
}

func longBody() string {
	return strings.Repeat("这里是详细的章节内容，围绕要点展开论述。", 20)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
generator:
  provider: openai
  model: gpt-4o
server:
  output_dir: `+filepath.Join(t.TempDir(), "out")+`
`), 0o644))
	cfg, err := config.Load(path)
	require.NoError(t, err)
	return cfg
}

func testServer(t *testing.T, gen generator.TextGenerator) (http.Handler, store.Store) {
	t.Helper()
	cfg := testConfig(t)
	st, err := store.NewJSONStore(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	srv := New(cfg, workflow.New(gen), st, Options{})
	return srv.Handler(), st
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeWorkflow(t *testing.T, rr *httptest.ResponseRecorder) WorkflowResponse {
	t.Helper()
	var resp WorkflowResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func TestCreateWorkflow(t *testing.T) {
	h, _ := testServer(t, scriptedGenerator("人工智能全景", testOutlineJSON, longBody()))

	rr := doJSON(t, h, http.MethodPost, "/api/document-workflow", CreateWorkflowRequest{
		Topic:        "人工智能",
		DocumentType: "slide",
		PageLimit:    10,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	resp := decodeWorkflow(t, rr)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "人工智能全景", resp.State.Title)
	assert.Equal(t, document.StepContentGenerated, resp.State.CurrentStep)
	assert.Len(t, resp.State.Content, 3)
}

func TestCreateWorkflowDefaultsFromConfig(t *testing.T) {
	h, _ := testServer(t, scriptedGenerator("标题", testOutlineJSON, longBody()))

	rr := doJSON(t, h, http.MethodPost, "/api/document-workflow", CreateWorkflowRequest{Topic: "量子计算"})
	require.Equal(t, http.StatusCreated, rr.Code)

	resp := decodeWorkflow(t, rr)
	assert.Equal(t, document.TypeSlide, resp.State.Type)
	assert.Equal(t, 10, resp.State.PageLimit)
}

func TestCreateWorkflowValidation(t *testing.T) {
	h, _ := testServer(t, scriptedGenerator("标题", testOutlineJSON, longBody()))

	cases := []struct {
		name string
		req  CreateWorkflowRequest
	}{
		{"missing topic", CreateWorkflowRequest{}},
		{"bad type", CreateWorkflowRequest{Topic: "x", DocumentType: "spreadsheet"}},
		{"bad stop_at", CreateWorkflowRequest{Topic: "x", StopAt: "halfway"}},
		{"negative page limit", CreateWorkflowRequest{Topic: "x", PageLimit: -3}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := doJSON(t, h, http.MethodPost, "/api/document-workflow", tc.req)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestCreateWorkflowStopAtTitle(t *testing.T) {
	h, _ := testServer(t, scriptedGenerator("深度学习进展", testOutlineJSON, longBody()))

	rr := doJSON(t, h, http.MethodPost, "/api/document-workflow", CreateWorkflowRequest{
		Topic:  "深度学习",
		StopAt: "title_generated",
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	resp := decodeWorkflow(t, rr)
	assert.Equal(t, document.StepTitleGenerated, resp.State.CurrentStep)
	assert.Empty(t, resp.State.Outline)
}

func TestGetDocument(t *testing.T) {
	h, _ := testServer(t, scriptedGenerator("标题", testOutlineJSON, longBody()))

	created := decodeWorkflow(t, doJSON(t, h, http.MethodPost, "/api/document-workflow",
		CreateWorkflowRequest{Topic: "区块链"}))

	rr := doJSON(t, h, http.MethodGet, "/api/document/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	got := decodeWorkflow(t, rr)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.State.Title, got.State.Title)

	assert.Equal(t, http.StatusNotFound, doJSON(t, h, http.MethodGet, "/api/document/missing", nil).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(t, h, http.MethodGet, "/api/document/bad*id", nil).Code)
}

func TestListAndDeleteDocuments(t *testing.T) {
	h, _ := testServer(t, scriptedGenerator("标题", testOutlineJSON, longBody()))

	first := decodeWorkflow(t, doJSON(t, h, http.MethodPost, "/api/document-workflow",
		CreateWorkflowRequest{Topic: "边缘计算"}))
	decodeWorkflow(t, doJSON(t, h, http.MethodPost, "/api/document-workflow",
		CreateWorkflowRequest{Topic: "云计算"}))

	rr := doJSON(t, h, http.MethodGet, "/api/documents", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var list []WorkflowResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Len(t, list, 2)

	assert.Equal(t, http.StatusNoContent, doJSON(t, h, http.MethodDelete, "/api/document/"+first.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(t, h, http.MethodGet, "/api/document/"+first.ID, nil).Code)
}

func TestEditTitle(t *testing.T) {
	h, _ := testServer(t, scriptedGenerator("标题", testOutlineJSON, longBody()))

	created := decodeWorkflow(t, doJSON(t, h, http.MethodPost, "/api/document-workflow",
		CreateWorkflowRequest{Topic: "自动驾驶"}))

	rr := doJSON(t, h, http.MethodPut, "/api/edit-workflow-title/"+created.ID,
		EditTitleRequest{Title: "自动驾驶技术白皮书"})
	require.Equal(t, http.StatusOK, rr.Code)

	resp := decodeWorkflow(t, rr)
	assert.Equal(t, "自动驾驶技术白皮书", resp.State.Title)
	assert.True(t, resp.State.UserEditedTitle)
	// Content was already generated, so the edit marks it stale.
	assert.True(t, resp.NeedsContentUpdate)

	assert.Equal(t, http.StatusBadRequest,
		doJSON(t, h, http.MethodPut, "/api/edit-workflow-title/"+created.ID, EditTitleRequest{Title: "  "}).Code)
}

func TestEditOutlineRollsBackStep(t *testing.T) {
	h, _ := testServer(t, scriptedGenerator("标题", testOutlineJSON, longBody()))

	created := decodeWorkflow(t, doJSON(t, h, http.MethodPost, "/api/document-workflow",
		CreateWorkflowRequest{Topic: "物联网"}))

	newOutline := []document.Section{
		{Title: "设备层", Points: []string{"传感器", "网关"}},
		{Title: "平台层", Points: []string{"接入", "存储"}},
	}
	rr := doJSON(t, h, http.MethodPut, "/api/edit-workflow-outline/"+created.ID,
		EditOutlineRequest{Outline: newOutline})
	require.Equal(t, http.StatusOK, rr.Code)

	resp := decodeWorkflow(t, rr)
	assert.Equal(t, document.StepOutlineGenerated, resp.State.CurrentStep)
	assert.True(t, resp.State.UserEditedOutline)
	assert.True(t, resp.NeedsContentUpdate)
	assert.Equal(t, []string{"设备层", "平台层"}, resp.State.SectionTitles())

	assert.Equal(t, http.StatusBadRequest,
		doJSON(t, h, http.MethodPut, "/api/edit-workflow-outline/"+created.ID, EditOutlineRequest{}).Code)
}

func TestRegenerateContentAfterOutlineEdit(t *testing.T) {
	h, _ := testServer(t, scriptedGenerator("标题", testOutlineJSON, longBody()))

	created := decodeWorkflow(t, doJSON(t, h, http.MethodPost, "/api/document-workflow",
		CreateWorkflowRequest{Topic: "智能制造"}))

	newOutline := []document.Section{
		{Title: "产线自动化", Points: []string{"机器人", "视觉检测"}},
		{Title: "数据驱动", Points: []string{"采集", "分析"}},
	}
	doJSON(t, h, http.MethodPut, "/api/edit-workflow-outline/"+created.ID,
		EditOutlineRequest{Outline: newOutline})

	rr := doJSON(t, h, http.MethodPost, "/api/regenerate-content/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	resp := decodeWorkflow(t, rr)
	assert.False(t, resp.NeedsContentUpdate)
	assert.Equal(t, document.StepContentGenerated, resp.State.CurrentStep)
	require.Len(t, resp.State.Content, 2)
	assert.Contains(t, resp.State.Content, "产线自动化")
	assert.Contains(t, resp.State.Content, "数据驱动")
	// Content for the old outline sections is gone.
	assert.NotContains(t, resp.State.Content, "基础概念")
}

func TestRegenerateContentWithoutOutline(t *testing.T) {
	h, _ := testServer(t, scriptedGenerator("标题", testOutlineJSON, longBody()))

	created := decodeWorkflow(t, doJSON(t, h, http.MethodPost, "/api/document-workflow",
		CreateWorkflowRequest{Topic: "新能源", StopAt: "title_generated"}))

	rr := doJSON(t, h, http.MethodPost, "/api/regenerate-content/"+created.ID, nil)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestGenerateDocument(t *testing.T) {
	h, st := testServer(t, scriptedGenerator("标题", testOutlineJSON, longBody()))

	created := decodeWorkflow(t, doJSON(t, h, http.MethodPost, "/api/document-workflow",
		CreateWorkflowRequest{Topic: "数字孪生"}))

	rr := doJSON(t, h, http.MethodPost, "/api/generate-document/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp GenerateDocumentResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.FilePath)

	data, err := os.ReadFile(resp.FilePath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# 标题")

	if resp.HTMLFilePath != "" {
		html, err := os.ReadFile(resp.HTMLFilePath)
		require.NoError(t, err)
		assert.Contains(t, string(html), "<!DOCTYPE html>")
	}

	rec, err := st.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.FilePath, rec.FilePath)
}

func TestGenerateDocumentRequiresFreshContent(t *testing.T) {
	h, _ := testServer(t, scriptedGenerator("标题", testOutlineJSON, longBody()))

	created := decodeWorkflow(t, doJSON(t, h, http.MethodPost, "/api/document-workflow",
		CreateWorkflowRequest{Topic: "智慧城市", StopAt: "outline_generated"}))
	assert.Equal(t, http.StatusConflict,
		doJSON(t, h, http.MethodPost, "/api/generate-document/"+created.ID, nil).Code)

	full := decodeWorkflow(t, doJSON(t, h, http.MethodPost, "/api/document-workflow",
		CreateWorkflowRequest{Topic: "智慧城市"}))
	doJSON(t, h, http.MethodPut, "/api/edit-workflow-title/"+full.ID, EditTitleRequest{Title: "改过的标题"})
	assert.Equal(t, http.StatusConflict,
		doJSON(t, h, http.MethodPost, "/api/generate-document/"+full.ID, nil).Code)
}

func TestHealthz(t *testing.T) {
	h, _ := testServer(t, scriptedGenerator("标题", testOutlineJSON, longBody()))

	rr := doJSON(t, h, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}
