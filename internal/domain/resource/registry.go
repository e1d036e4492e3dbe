package resource

import (
	"sort"

	apperrors "github.com/xiebiao/bookstore-admin/pkg/errors"
)

// Registry 资源注册表
type Registry struct {
	descriptors map[string]*Descriptor
}

// NewRegistry 创建包含全部后台资源的注册表
func NewRegistry() *Registry {
	r := &Registry{descriptors: map[string]*Descriptor{}}
	for _, d := range defaultDescriptors() {
		r.descriptors[d.Name] = d
	}
	return r
}

// Get 按资源名查找契约
func (r *Registry) Get(name string) (*Descriptor, error) {
	d, ok := r.descriptors[name]
	if !ok {
		return nil, apperrors.ErrUnknownResource
	}
	return d, nil
}

// Names 返回全部资源名（排序后，便于稳定输出）
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.descriptors))
	for name := range r.descriptors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// defaultDescriptors 七种后台资源的外部契约
// 参数名与包裹结构按上游API各资源的现状逐一声明，不可互换
func defaultDescriptors() []*Descriptor {
	return []*Descriptor{
		{
			Name:         "products",
			Path:         "/api/v1/products",
			IDField:      "_id",
			KeywordParam: "keyword",
			Sortable:     true,
			FilterParams: []string{"cat_id"},
			Envelope:     EnvelopeSpec{ItemsKey: "products", TotalKey: "totalRecords"},
			Fields: []FieldSpec{
				{Name: "product_name", Label: "Tên sản phẩm", Kind: FieldString, Required: true, MaxLen: 200},
				{Name: "category_id", Label: "Thể loại", Kind: FieldString, Required: true},
				{Name: "price", Label: "Giá bán", Kind: FieldFloat, Required: true},
				{Name: "originalPrice", Label: "Giá gốc", Kind: FieldFloat},
				{Name: "supplier", Label: "Nhà cung cấp", Kind: FieldString, Required: true},
				{Name: "publisher", Label: "Nhà xuất bản", Kind: FieldString},
				{Name: "authors", Label: "Tác giả", Kind: FieldStringList},
				{Name: "thumbnails", Label: "Ảnh sản phẩm", Kind: FieldStringList},
				{Name: "isNew", Label: "Hàng mới", Kind: FieldBool},
				{Name: "isPopular", Label: "Bán chạy", Kind: FieldBool},
				{Name: "isFlashSale", Label: "Flash sale", Kind: FieldBool},
				{Name: "publicationYear", Label: "Năm xuất bản", Kind: FieldInt},
				{Name: "language", Label: "Ngôn ngữ", Kind: FieldString},
				{Name: "pages", Label: "Số trang", Kind: FieldInt},
				{Name: "format", Label: "Hình thức", Kind: FieldString},
				{Name: "weight", Label: "Trọng lượng", Kind: FieldFloat},
				{Name: "dimensions", Label: "Kích thước", Kind: FieldString},
				{Name: "slug", Label: "Slug", Kind: FieldString},
			},
			NameField: "product_name",
			SlugField: "slug",
			CanCreate: true,
			CanUpdate: true,
			CanDelete: true,
		},
		{
			Name:         "categories",
			Path:         "/api/v1/categories",
			IDField:      "_id",
			KeywordParam: "keyword",
			Envelope:     EnvelopeSpec{ItemsKey: "items", TotalKey: "totalRecords"},
			Fields: []FieldSpec{
				{Name: "name", Label: "Tên thể loại", Kind: FieldString, Required: true, MaxLen: 100},
				{Name: "description", Label: "Mô tả", Kind: FieldString, MaxLen: 500},
				{Name: "slug", Label: "Slug", Kind: FieldString},
			},
			NameField: "name",
			SlugField: "slug",
			CanCreate: true,
			CanUpdate: true,
			CanDelete: true,
		},
		{
			Name:         "customers",
			Path:         "/api/v1/customers",
			IDField:      "_id",
			KeywordParam: "keyword",
			Sortable:     true,
			FilterParams: []string{"city", "is_active"},
			Envelope:     EnvelopeSpec{ItemsKey: "items", TotalKey: "totalRecords"},
			Fields: []FieldSpec{
				{Name: "username", Label: "Tên đăng nhập", Kind: FieldString, Required: true, MaxLen: 50},
				{Name: "full_name", Label: "Họ tên", Kind: FieldString, Required: true, MaxLen: 100},
				{Name: "email", Label: "Email", Kind: FieldString, Required: true, MaxLen: 100},
				{Name: "phone", Label: "Số điện thoại", Kind: FieldString, MaxLen: 20},
				{Name: "address", Label: "Địa chỉ", Kind: FieldString, MaxLen: 200},
				{Name: "city", Label: "Thành phố", Kind: FieldString, MaxLen: 100},
				{Name: "date_of_birth", Label: "Ngày sinh", Kind: FieldString},
				{Name: "gender", Label: "Giới tính", Kind: FieldString, Enum: []string{"male", "female", "other"}},
				{Name: "is_active", Label: "Kích hoạt", Kind: FieldBool},
			},
			CanCreate: true,
			CanUpdate: true,
			CanDelete: true,
		},
		{
			Name:         "orders",
			Path:         "/api/v1/orders",
			IDField:      "_id",
			KeywordParam: "search", // 历史契约：orders的关键词参数是search
			FilterParams: []string{"status", "startDate", "endDate", "minAmount", "maxAmount"},
			Envelope:     EnvelopeSpec{ItemsKey: "", TotalKey: "total"}, // data本身是数组
			Fields: []FieldSpec{
				{Name: "status", Label: "Trạng thái", Kind: FieldString, Required: true,
					Enum: []string{"pending", "processing", "shipping", "completed", "cancelled"}},
				{Name: "payment_method", Label: "Thanh toán", Kind: FieldString,
					Enum: []string{"cash_on_delivery", "zalopay", "vnpay", "shopeepay", "momo", "atm", "visa"}},
				{Name: "shipping_address", Label: "Địa chỉ giao hàng", Kind: FieldString, MaxLen: 200},
				{Name: "recipient_name", Label: "Người nhận", Kind: FieldString, MaxLen: 100},
				{Name: "recipient_phone", Label: "SĐT người nhận", Kind: FieldString, MaxLen: 20},
				{Name: "notes", Label: "Ghi chú", Kind: FieldString, MaxLen: 500},
			},
			CanCreate: false, // 订单由商城前台产生，后台只改状态/删除
			CanUpdate: true,
			CanDelete: true,
		},
		{
			Name:         "staffs",
			Path:         "/api/v1/staffs",
			IDField:      "_id",
			KeywordParam: "keyword",
			Sortable:     true,
			Envelope:     EnvelopeSpec{ItemsKey: "staffs", TotalKey: "totalRecords"},
			Fields: []FieldSpec{
				{Name: "username", Label: "Tên đăng nhập", Kind: FieldString, Required: true, MaxLen: 50},
				{Name: "full_name", Label: "Họ tên", Kind: FieldString, Required: true, MaxLen: 100},
				{Name: "email", Label: "Email", Kind: FieldString, Required: true, MaxLen: 100},
				{Name: "phone", Label: "Số điện thoại", Kind: FieldString, MaxLen: 20},
				{Name: "role", Label: "Vai trò", Kind: FieldString, Required: true, Enum: []string{"admin", "dev"}},
				{Name: "salary", Label: "Lương", Kind: FieldFloat},
				{Name: "hire_date", Label: "Ngày vào làm", Kind: FieldString},
				{Name: "is_active", Label: "Kích hoạt", Kind: FieldBool},
			},
			CanCreate: true,
			CanUpdate: true,
			CanDelete: true,
		},
		{
			Name:         "suppliers",
			Path:         "/api/v1/suppliers",
			IDField:      "_id",
			KeywordParam: "keyword",
			Envelope:     EnvelopeSpec{ItemsKey: "items", TotalKey: "totalRecords"},
			Fields: []FieldSpec{
				{Name: "name", Label: "Tên nhà cung cấp", Kind: FieldString, Required: true, MaxLen: 100},
				{Name: "email", Label: "Email", Kind: FieldString, MaxLen: 100},
				{Name: "phone", Label: "Số điện thoại", Kind: FieldString, MaxLen: 20},
				{Name: "address", Label: "Địa chỉ", Kind: FieldString, MaxLen: 200},
				{Name: "description", Label: "Mô tả", Kind: FieldString, MaxLen: 500},
			},
			CanCreate: true,
			CanUpdate: true,
			CanDelete: true,
		},
		{
			Name:         "publishers",
			Path:         "/api/v1/publishers",
			IDField:      "_id",
			KeywordParam: "keyword",
			Envelope:     EnvelopeSpec{ItemsKey: "items", TotalKey: "totalRecords"},
			Fields: []FieldSpec{
				{Name: "name", Label: "Tên nhà xuất bản", Kind: FieldString, Required: true, MaxLen: 100},
				{Name: "description", Label: "Mô tả", Kind: FieldString, MaxLen: 500},
				{Name: "slug", Label: "Slug", Kind: FieldString},
			},
			NameField: "name",
			SlugField: "slug",
			CanCreate: true,
			CanUpdate: true,
			CanDelete: true,
		},
	}
}
