package service

import (
	"fmt"
	"os"

	"event-social/internal/social"

	"gopkg.in/yaml.v3"
)

// LoadSeed 读取种子数据YAML文件
func LoadSeed(path string) (*social.Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取种子文件失败: %w", err)
	}
	var seed social.Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("解析种子文件失败: %w", err)
	}
	return &seed, nil
}
