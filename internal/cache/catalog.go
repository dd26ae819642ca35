package cache

import (
	"fmt"
	"time"
)

// 商品目录缓存
const (
	CatalogProductsKey = "catalog:products"
	CatalogTTL         = 5 * time.Minute
)

// CatalogProductKey 单个商品缓存 key
func CatalogProductKey(id int) string {
	return fmt.Sprintf("catalog:product:%d", id)
}
