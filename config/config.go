package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const ENV_FILE = ".env"
const CONFIG_FILE = "config.yaml"

const (
	DefaultRecencyDays  = 31
	DefaultBatchSize    = 10
	DefaultLLMProvider  = "openai"
	DefaultLLMModelName = "gpt-4"
	DefaultLLMTimeout   = 2 * time.Minute

	// 수집 패스 최대 길이와 같게 잡는다 (redis.lock_ttl 기본값과 동일).
	DefaultKafkaMaxPollInterval = 30 * time.Minute
)

type AppConfig struct {
	Logging       LoggingConfig       `yaml:"logging"`
	Mongo         MongoConfig         `yaml:"mongo"`
	LLM           LLMConfig           `yaml:"llm"`
	Processor     ProcessorConfig     `yaml:"processor"`
	API           APIConfig           `yaml:"api"`
	Ingestion     IngestionConfig     `yaml:"ingestion"`
	EventRegistry EventRegistryConfig `yaml:"event_registry"`
	Kafka         KafkaConfig         `yaml:"kafka"`
	Redis         RedisConfig         `yaml:"redis"`
	Taxonomy      []CategoryDef       `yaml:"taxonomy"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

// LLMConfig 는 프로세서가 사용하는 언어 모델 설정이다.
// API 키는 설정 파일이 아닌 환경변수(GEMINI_API_KEY / OPENAI_API_KEY)에서 읽는다.
type LLMConfig struct {
	Provider  string `yaml:"provider"` // "openai" | "google"
	ModelName string `yaml:"model_name"`
	BaseURL   string `yaml:"base_url"`
	// Timeout 은 모델 호출 한 번(또는 원격 /quiz 호출 한 번)의 HTTP 타임아웃이다.
	Timeout time.Duration `yaml:"timeout"`
}

type ProcessorConfig struct {
	Addr string `yaml:"addr"`
	// StrictParse 가 true 이면 모델 출력의 필드를 태스크별로 검증한다.
	StrictParse bool `yaml:"strict_parse"`
}

type APIConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	// UpdateNewsAsync 가 true 이고 kafka 가 설정되어 있으면 update_news 는
	// 수집 요청 이벤트만 발행하고 202 를 돌려준다.
	UpdateNewsAsync bool `yaml:"update_news_async"`
}

// IngestionConfig 는 기사 수집 패스 설정이다.
type IngestionConfig struct {
	// Source 는 "eventregistry" 또는 "rss" 이다.
	Source      string `yaml:"source"`
	RecencyDays int    `yaml:"recency_days"`
	BatchSize   int    `yaml:"batch_size"`
	// QuizEndpoint 가 비어 있으면 프로세서를 같은 프로세스에서 직접 호출한다.
	QuizEndpoint string `yaml:"quiz_endpoint"`
	// Schedule 은 cron 표현식이다. 비어 있으면 cmd/ingest 는 1회만 실행한다.
	Schedule       string        `yaml:"schedule"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// RenderPages 는 rss 소스에서 요약만 있는 항목의 원문을 headless chromium 으로 가져온다.
	RenderPages bool `yaml:"render_pages"`
	// AbortOnQuizFailure 가 true 면 퀴즈 생성 호출 실패(전송 오류) 시 패스를 중단한다.
	// false 면 해당 기사만 버린다.
	AbortOnQuizFailure bool `yaml:"abort_on_quiz_failure"`
}

type EventRegistryConfig struct {
	BaseURL string `yaml:"base_url"`
}

type KafkaConfig struct {
	BootstrapServers string `yaml:"bootstrap_servers"`
	// Topic 은 qa.created 이벤트 토픽이다.
	Topic string `yaml:"topic"`
	// IngestionTopic 은 수집 패스 요청 토픽이다 (cmd/ingest -consume).
	IngestionTopic string `yaml:"ingestion_topic"`
	GroupID        string `yaml:"group_id"`
	// RetryDelays 는 지연 토픽 간격이다. 비어 있으면 eventbus 기본값을 쓴다.
	// 바꾸면 새 지연 토픽이 생기므로 재주입기도 같은 값으로 다시 띄워야 한다.
	RetryDelays []time.Duration `yaml:"retry_delays"`
	// MaxPollInterval 은 이벤트 하나를 처리하는 데 허용되는 최대 시간이다.
	// 수집 패스 한 번이 이보다 길면 컨슈머가 그룹에서 빠진다.
	MaxPollInterval time.Duration `yaml:"max_poll_interval"`
}

type RedisConfig struct {
	Addr    string        `yaml:"addr"`
	LockKey string        `yaml:"lock_key"`
	LockTTL time.Duration `yaml:"lock_ttl"`
}

// CategoryDef is a single root category with its direct subcategories.
// For the eventregistry source URI is a category uri (e.g. "news/Sports"),
// for the rss source it is a feed URL. ID is the persistent category id and
// must never be reused for a different category.
type CategoryDef struct {
	ID            int64            `yaml:"id"`
	Name          string           `yaml:"name"`
	URI           string           `yaml:"uri"`
	Subcategories []SubcategoryDef `yaml:"subcategories"`
}

type SubcategoryDef struct {
	ID   int64  `yaml:"id"`
	Name string `yaml:"name"`
	URI  string `yaml:"uri"`
}

var config *AppConfig

func InitApp() {
	// load environment variables
	godotenv.Load(filepath.Join(GetBasePath(), ENV_FILE))

	c, err := Load(filepath.Join(GetBasePath(), CONFIG_FILE))
	if err != nil {
		panic(err)
	}
	config = c
}

// Load reads and parses a config file without touching the global config.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*AppConfig, error) {
	var c AppConfig
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	c.applyDefaults()
	return &c, nil
}

func (c *AppConfig) applyDefaults() {
	if c.Ingestion.RecencyDays <= 0 {
		c.Ingestion.RecencyDays = DefaultRecencyDays
	}
	if c.Ingestion.BatchSize <= 0 {
		c.Ingestion.BatchSize = DefaultBatchSize
	}
	if c.Ingestion.Source == "" {
		c.Ingestion.Source = "eventregistry"
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = DefaultLLMProvider
	}
	if c.LLM.ModelName == "" {
		c.LLM.ModelName = DefaultLLMModelName
	}
	if c.LLM.Timeout <= 0 {
		c.LLM.Timeout = DefaultLLMTimeout
	}
	if c.Processor.Addr == "" {
		c.Processor.Addr = ":8000"
	}
	if c.API.Addr == "" {
		c.API.Addr = ":8080"
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "news-quiz.qa"
	}
	if c.Kafka.IngestionTopic == "" {
		c.Kafka.IngestionTopic = "news-quiz.ingestion"
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "news-quiz-ingest"
	}
	if c.Kafka.MaxPollInterval <= 0 {
		c.Kafka.MaxPollInterval = DefaultKafkaMaxPollInterval
	}
	if c.Redis.LockKey == "" {
		c.Redis.LockKey = "news-quiz:ingestion:lock"
	}
	if c.Redis.LockTTL <= 0 {
		c.Redis.LockTTL = 30 * time.Minute
	}
}

func GetConfig() AppConfig {
	if config == nil {
		InitApp()
	}

	return *config
}

// SetConfig replaces the global config. Used by tests and tools that build
// their own AppConfig.
func SetConfig(c *AppConfig) {
	config = c
}

func GetBasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		cfgPath := filepath.Join(dir, CONFIG_FILE)
		if info, err := os.Stat(cfgPath); err == nil && !info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
