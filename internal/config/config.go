package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"

	"github.com/ryabkov82/size-tally/internal/extractor"
	"github.com/ryabkov82/size-tally/internal/sizes"
)

// EnvPrefix - префикс переменных окружения (SIZETALLY_WORKERS и т.д.).
const EnvPrefix = "SIZETALLY"

// ErrNoInput - не указан ни текст, ни файлы.
var ErrNoInput = errors.New("необходимо указать текст (-text) или файлы (-dir или аргументы)")

type Config struct {
	TextPath    string   `envconfig:"TEXT" flag:"text"`
	Inputs      []string `envconfig:"INPUTS" flag:"dir"`
	Buckets     string   `envconfig:"BUCKETS" default:"grouped" flag:"buckets" validate:"omitempty,preset"`
	BucketsFile string   `envconfig:"BUCKETS_FILE" flag:"buckets-file"`
	Mode        string   `envconfig:"MODE" default:"auto" flag:"mode" validate:"oneof=named positional auto"`
	Column      string   `envconfig:"COLUMN" default:"Quantité par taille" flag:"column" validate:"required"`
	Separator   string   `envconfig:"SEPARATOR" default:"\t" flag:"sep" validate:"required"`
	Workers     int      `envconfig:"WORKERS" default:"4" flag:"workers" validate:"gte=1,lte=64"`
	OutCSV      string   `envconfig:"OUT_CSV" flag:"out-csv"`
	OutGrid     string   `envconfig:"OUT_GRID" flag:"out-grid"`
	OutXLSX     string   `envconfig:"OUT_XLSX" flag:"out-xlsx"`
	LogLevel    string   `envconfig:"LOG_LEVEL" default:"info" flag:"log-level" validate:"oneof=debug info warn error"`
	LogFormat   string   `envconfig:"LOG_FORMAT" default:"text" flag:"log-format" validate:"oneof=json text"`
}

// Parse читает переменные окружения, затем флаги командной строки.
// Флаги имеют приоритет, позиционные аргументы добавляются к Inputs.
func Parse(args []string, output io.Writer) (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("ошибка чтения окружения: %w", err)
	}

	fs := flag.NewFlagSet("size-tally", flag.ContinueOnError)
	if output != nil {
		fs.SetOutput(output)
	}

	var dirs stringList
	fs.StringVar(&cfg.TextPath, "text", cfg.TextPath, "файл с вставленным текстом, '-' для stdin")
	fs.Var(&dirs, "dir", "папка или файл таблицы (можно повторять)")
	fs.StringVar(&cfg.Buckets, "buckets", cfg.Buckets, "набор корзин: "+strings.Join(sizes.PresetNames(), ", "))
	fs.StringVar(&cfg.BucketsFile, "buckets-file", cfg.BucketsFile, "YAML-файл с набором корзин")
	fs.StringVar(&cfg.Mode, "mode", cfg.Mode, "режим поиска колонок: named, positional, auto")
	fs.StringVar(&cfg.Column, "column", cfg.Column, "имя колонки для режима named")
	fs.StringVar(&cfg.Separator, "sep", cfg.Separator, "разделитель полей вставленного текста")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "количество файлов, обрабатываемых одновременно")
	fs.StringVar(&cfg.OutCSV, "out-csv", cfg.OutCSV, "CSV с итогами по корзинам")
	fs.StringVar(&cfg.OutGrid, "out-grid", cfg.OutGrid, "CSV с разобранными строками текста")
	fs.StringVar(&cfg.OutXLSX, "out-xlsx", cfg.OutXLSX, "XLSX с итогами, по листу на файл")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "уровень логирования")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "формат логов: json, text")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// флаги -dir заменяют список из окружения
	if len(dirs) > 0 {
		cfg.Inputs = dirs
	}
	cfg.Inputs = append(cfg.Inputs, fs.Args()...)

	// Нормализация путей
	for i, in := range cfg.Inputs {
		cfg.Inputs[i] = filepath.Clean(in)
	}
	if cfg.TextPath != "" && cfg.TextPath != "-" {
		cfg.TextPath = filepath.Clean(cfg.TextPath)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func ParseFlags() (*Config, error) {
	return Parse(os.Args[1:], nil)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("preset", func(fl validator.FieldLevel) bool {
		_, err := sizes.Preset(fl.Field().String())
		return err == nil
	})
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("flag"); name != "" {
			return "-" + name
		}
		return fld.Name
	})
	return v
}

func (c *Config) Validate() error {
	if c.TextPath == "" && len(c.Inputs) == 0 {
		return ErrNoInput
	}
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, formatValidationError(fe))
		}
		return fmt.Errorf("некорректная конфигурация: %s", strings.Join(msgs, "; "))
	}
	return nil
}

func formatValidationError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s обязателен", field)
	case "oneof":
		return fmt.Sprintf("%s должен быть одним из: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "preset":
		return fmt.Sprintf("%s: неизвестный набор %q, доступны: %s", field, fe.Value(), strings.Join(sizes.PresetNames(), ", "))
	case "gte":
		return fmt.Sprintf("%s должен быть не меньше %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s должен быть не больше %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s не прошёл проверку %s", field, fe.Tag())
	}
}

// BucketSet возвращает набор корзин из файла или предустановленный.
func (c *Config) BucketSet() (sizes.BucketSet, error) {
	if c.BucketsFile != "" {
		return LoadBuckets(c.BucketsFile)
	}
	return sizes.Preset(c.Buckets)
}

func (c *Config) Extractor() (extractor.Extractor, error) {
	return extractor.Strategy(c.Mode, c.Column)
}

type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}
