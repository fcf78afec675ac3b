package config

// RuntimeConfig 运行时配置
// 功能：存储填充默认值后的配置，供一次仿真任务内的各个组件读取
type RuntimeConfig struct {
	All Config  // 全部配置
	C   Control // 全局控制配置
	P   Planner // 规划器配置
}

// NewRuntimeConfig 根据配置初始化运行时配置
// 功能：复制配置并为缺省项填充默认值
// 参数：config-原始配置对象
// 返回：初始化的运行时配置指针
func NewRuntimeConfig(config Config) *RuntimeConfig {
	config.ApplyDefaults()
	return &RuntimeConfig{
		All: config,
		C:   config.Control,
		P:   config.Planner,
	}
}
