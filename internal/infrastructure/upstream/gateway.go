package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/xiebiao/bookstore-admin/internal/domain/query"
	"github.com/xiebiao/bookstore-admin/internal/domain/resource"
	apperrors "github.com/xiebiao/bookstore-admin/pkg/errors"
)

// Gateway 基于HTTP的远端资源网关
// 把FilterState按各资源的契约翻译为查询参数，
// 并按各资源的包裹结构解出统一的ListResult
type Gateway struct {
	client *Client
}

// NewGateway 创建网关
func NewGateway(client *Client) *Gateway {
	return &Gateway{client: client}
}

var _ resource.Gateway = (*Gateway)(nil)

// List 拉取一页列表
func (g *Gateway) List(ctx context.Context, desc *resource.Descriptor, filter query.FilterState) (*resource.ListResult, error) {
	body, err := g.client.do(ctx, desc.Name, "list", http.MethodGet, desc.Path, buildListQuery(desc, filter), nil)
	if err != nil {
		return nil, err
	}
	return decodeList(desc, body)
}

// Create 创建记录
func (g *Gateway) Create(ctx context.Context, desc *resource.Descriptor, values map[string]interface{}) (resource.Record, error) {
	body, err := g.client.do(ctx, desc.Name, "create", http.MethodPost, desc.Path, nil, values)
	if err != nil {
		return nil, err
	}
	return decodeRecord(body)
}

// Update 按ID更新记录
func (g *Gateway) Update(ctx context.Context, desc *resource.Descriptor, id string, values map[string]interface{}) (resource.Record, error) {
	path := desc.Path + "/" + url.PathEscape(id)
	body, err := g.client.do(ctx, desc.Name, "update", http.MethodPut, path, nil, values)
	if err != nil {
		return nil, err
	}
	return decodeRecord(body)
}

// Delete 按ID删除记录
func (g *Gateway) Delete(ctx context.Context, desc *resource.Descriptor, id string) error {
	path := desc.Path + "/" + url.PathEscape(id)
	_, err := g.client.do(ctx, desc.Name, "delete", http.MethodDelete, path, nil, nil)
	return err
}

// buildListQuery 把筛选状态翻译成该资源的查询参数
//
// page/limit始终发送；关键词参数名因资源而异（orders用search）；
// sort_by/sort_type仅在资源声明支持排序时发送；
// 资源特定筛选只透传声明过的键。
func buildListQuery(desc *resource.Descriptor, filter query.FilterState) url.Values {
	q := url.Values{}
	q.Set("page", formatInt(filter.Page))
	q.Set("limit", formatInt(filter.Limit))

	if filter.Keyword != "" {
		param := desc.KeywordParam
		if param == "" {
			param = query.ParamKeyword
		}
		q.Set(param, filter.Keyword)
	}

	if desc.Sortable {
		if filter.SortBy != "" {
			q.Set(query.ParamSortBy, filter.SortBy)
		}
		if filter.SortType != "" {
			q.Set(query.ParamSortType, filter.SortType)
		}
	}

	for _, name := range desc.FilterParams {
		if v, ok := filter.Filters[name]; ok && v != "" {
			q.Set(name, v)
		}
	}

	return q
}

// decodeList 按资源的包裹结构解出列表与总数
//
// 三种形态（见EnvelopeSpec）：
// 1. {data: {products: [...], totalRecords: N}}
// 2. {data: {items: [...], totalRecords: N}}
// 3. {data: [...], total: N}
func decodeList(desc *resource.Descriptor, body []byte) (*resource.ListResult, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return nil, apperrors.WrapWithCode(err, apperrors.ErrCodeUpstreamBadPayload, "数据服务响应格式异常")
	}

	data, ok := top["data"]
	if !ok {
		return nil, apperrors.New(apperrors.ErrCodeUpstreamBadPayload, "数据服务响应缺少data字段")
	}

	result := &resource.ListResult{Items: []resource.Record{}}

	if desc.Envelope.ItemsKey == "" {
		// 形态3：data本身是数组，总数在顶层
		if err := json.Unmarshal(data, &result.Items); err != nil {
			return nil, apperrors.WrapWithCode(err, apperrors.ErrCodeUpstreamBadPayload, "数据服务响应格式异常")
		}
		result.TotalCount = decodeTotal(top[desc.Envelope.TotalKey])
		return result, nil
	}

	var inner map[string]json.RawMessage
	if err := json.Unmarshal(data, &inner); err != nil {
		return nil, apperrors.WrapWithCode(err, apperrors.ErrCodeUpstreamBadPayload, "数据服务响应格式异常")
	}
	if raw, ok := inner[desc.Envelope.ItemsKey]; ok {
		if err := json.Unmarshal(raw, &result.Items); err != nil {
			return nil, apperrors.WrapWithCode(err, apperrors.ErrCodeUpstreamBadPayload, "数据服务响应格式异常")
		}
	}
	result.TotalCount = decodeTotal(inner[desc.Envelope.TotalKey])

	return result, nil
}

// decodeRecord 解出单条记录（创建/更新响应）
// 上游返回{data: {...}}，个别接口直接返回记录本身，两种都接受
func decodeRecord(body []byte) (resource.Record, error) {
	if len(body) == 0 {
		return resource.Record{}, nil
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, apperrors.WrapWithCode(err, apperrors.ErrCodeUpstreamBadPayload, "数据服务响应格式异常")
	}

	raw := envelope.Data
	if len(raw) == 0 {
		raw = body
	}

	var record resource.Record
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, apperrors.WrapWithCode(err, apperrors.ErrCodeUpstreamBadPayload, "数据服务响应格式异常")
	}

	return record, nil
}

// decodeTotal 总数字段兼容数字与字符串两种写法
func decodeTotal(raw json.RawMessage) int64 {
	if len(raw) == 0 {
		return 0
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return int64(f)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if parsed, err := strconv.ParseInt(s, 10, 64); err == nil {
			return parsed
		}
	}
	return 0
}
