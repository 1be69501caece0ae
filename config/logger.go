package config

import "news-quiz/logger"

// InitLogger 는 logging 설정으로 전역 로거를 초기화한다.
// LOG_LEVEL 환경변수가 있으면 그 값을 우선한다.
func InitLogger(cfg LoggingConfig) {
	logger.InitFromEnv("LOG_LEVEL", cfg.Level)
}
