package enum

// ProductType bond
type ProductType uint8

const (
	_product_type_beg ProductType = iota
	ProductTypeBond
	_product_type_end
)

func (t ProductType) IsAvailable() bool {
	return t > _product_type_beg && t < _product_type_end
}

func (t ProductType) String() string {
	if t == ProductTypeBond {
		return "BOND"
	}
	return "UNKNOWN"
}
