package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	TelegramToken string

	ModelPath      string
	ModelName      string
	ModelInputSize int

	IncomingDir         string
	AnnotatedDir        string
	DetectionConfigPath string
	PresenceGate        bool

	Kafka KafkaConfig
}

// KafkaConfig параметры публикации результатов; пустой BootstrapServers отключает публикацию.
type KafkaConfig struct {
	BootstrapServers string
	Topic            string
	SecurityProtocol string
	SASLMechanism    string
	SASLUsername     string
	SASLPassword     string
	Acks             string
}

// Enabled сообщает, настроена ли публикация в Kafka
func (k KafkaConfig) Enabled() bool {
	return k.BootstrapServers != ""
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := &Config{
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),

		ModelPath:      getEnv("MODEL_PATH", "./models"),
		ModelName:      getEnv("MODEL_NAME", "default"),
		ModelInputSize: getEnvInt("MODEL_INPUT_SIZE", 640),

		IncomingDir:         getEnv("INCOMING_DIR", "./captures"),
		AnnotatedDir:        getEnv("ANNOTATED_DIR", "./annotated_images"),
		DetectionConfigPath: getEnv("DETECTION_CONFIG_PATH", "./config/grading_config.json"),
		PresenceGate:        getEnvBool("PRESENCE_GATE", true),

		Kafka: KafkaConfig{
			BootstrapServers: os.Getenv("KAFKA_BOOTSTRAP_SERVERS"),
			Topic:            getEnv("KAFKA_TOPIC", "pcb-inspections"),
			SecurityProtocol: os.Getenv("KAFKA_SECURITY_PROTOCOL"),
			SASLMechanism:    getEnv("KAFKA_SASL_MECHANISM", "PLAIN"),
			SASLUsername:     os.Getenv("KAFKA_SASL_USERNAME"),
			SASLPassword:     os.Getenv("KAFKA_SASL_PASSWORD"),
			Acks:             getEnv("KAFKA_ACKS", "all"),
		},
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getEnvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}
