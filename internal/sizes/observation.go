package sizes

// Допустимый диапазон размеров (только чётные значения).
const (
	MinSize = 34
	MaxSize = 64
)

// Observation - одна пара (количество, размер), извлечённая из входных данных.
type Observation struct {
	Quantity int
	Size     int
}

// Valid сообщает, попадает ли размер в диапазон [MinSize, MaxSize] и является ли он чётным.
func Valid(size int) bool {
	return size >= MinSize && size <= MaxSize && size%2 == 0
}
