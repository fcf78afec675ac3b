package config

// InputPath 指定场景数据来源的配置（MongoDB、文件系统）
// 功能：定义场景输入路径，支持YAML文件与MongoDB两种数据源
// 说明：File优先级高于MongoDB；MongoDB中按Name字段查找场景文档
type InputPath struct {
	DB   string `yaml:"db,omitempty"`   // 数据库名
	Col  string `yaml:"col,omitempty"`  // 集合名
	Name string `yaml:"name,omitempty"` // 场景名
	File string `yaml:"file,omitempty"` // 文件路径（优先级高于MongoDB）
}

// Input 指定模拟器输入数据的配置项
// 说明：Scene为空时使用配置文件中内联的scene，两者都为空时使用默认场景
type Input struct {
	URI   string     `yaml:"uri,omitempty"`   // MongoDB连接字符串
	Scene *InputPath `yaml:"scene,omitempty"` // 场景
}

// Rect 轴对齐矩形（左上角+宽高）
type Rect struct {
	X      float64 `yaml:"x" bson:"x"`
	Y      float64 `yaml:"y" bson:"y"`
	Width  float64 `yaml:"width" bson:"width"`
	Height float64 `yaml:"height" bson:"height"`
}

// Pose 位姿，Heading单位为度
type Pose struct {
	X       float64 `yaml:"x"`
	Y       float64 `yaml:"y"`
	Heading float64 `yaml:"heading"`
}

// Scene 内联场景定义
type Scene struct {
	Name      string `yaml:"name,omitempty" bson:"name"`
	World     Rect   `yaml:"world" bson:"world"`
	Spot      Rect   `yaml:"spot" bson:"spot"`
	Obstacles []Rect `yaml:"obstacles" bson:"obstacles"`
}

// Vehicle 车辆配置
// 说明：Start为指针，未配置时为nil并填充默认值，显式配置的(0, 0, 0)会被保留
type Vehicle struct {
	Start  *Pose   `yaml:"start"`  // 初始位姿
	Length float64 `yaml:"length"` // 车长
	Width  float64 `yaml:"width"`  // 车宽
}

// ControlStep 指定模拟器模拟时间范围和间隔的配置项
type ControlStep struct {
	Start    int32   `yaml:"start"`    // 开始步数
	Total    int32   `yaml:"total"`    // 总步数，超出后Episode以超时结束
	Interval float64 `yaml:"interval"` // 每步的时间间隔
}

// Safety 安全覆盖配置
// 功能：进入深度处于[BandMin, BandMax]且与IdealDepth之差不超过Tolerance时强制停车
// 说明：处于区间内但超出容差时速度上限为SlowSpeed；连续HoldTicks步强制停车视为泊车完成
// Tolerance为指针，以便区分未配置与显式配置的0；其余数值项为0时视为未配置
type Safety struct {
	BandMin    float64  `yaml:"band_min"`
	BandMax    float64  `yaml:"band_max"`
	IdealDepth float64  `yaml:"ideal_depth"`
	Tolerance  *float64 `yaml:"tolerance"`
	SlowSpeed  float64  `yaml:"slow_speed"`
	HoldTicks  int32    `yaml:"hold_ticks"`
}

// Tracking 混合模式下的航点跟踪配置
type Tracking struct {
	WaypointRadius float64 `yaml:"waypoint_radius"` // 到达航点的判定半径
	HandoverRadius float64 `yaml:"handover_radius"` // 距车位中心小于该值时改为直接跟踪车位
}

// Control 模拟器控制配置
type Control struct {
	Step         ControlStep `yaml:"step"`
	Hybrid       bool        `yaml:"hybrid"`        // 是否启用遗传算法规划+跟踪
	SensingRange float64     `yaml:"sensing_range"` // 前向测距量程
	Safety       Safety      `yaml:"safety"`
	Tracking     Tracking    `yaml:"tracking"`
}

// Weights 适应度函数各项权重
type Weights struct {
	Length    float64 `yaml:"length"`    // 路径长度
	Heading   float64 `yaml:"heading"`   // 转向代价
	Collision float64 `yaml:"collision"` // 每个碰撞路段的惩罚
	Final     float64 `yaml:"final"`     // 终点位姿偏差
}

// Planner 遗传算法规划器配置
type Planner struct {
	Seed            uint64  `yaml:"seed"`
	Waypoints       int     `yaml:"waypoints"`         // 航点数（染色体长度）
	Population      int     `yaml:"population"`        // 种群规模
	Generations     int     `yaml:"generations"`       // 最大代数
	CrossoverRate   float64 `yaml:"crossover_rate"`    // 交叉概率
	MutationRate    float64 `yaml:"mutation_rate"`     // 初始变异概率
	MinMutationRate float64 `yaml:"min_mutation_rate"` // 退火后的变异概率下限
	Tournament      int     `yaml:"tournament"`        // 锦标赛规模
	StallWindow     int     `yaml:"stall_window"`      // 连续多少代无改进后提前终止
	StallEpsilon    float64 `yaml:"stall_epsilon"`     // 视为改进的最小下降量
	PositionStep    float64 `yaml:"position_step"`     // 变异时位置扰动幅度
	HeadingStep     float64 `yaml:"heading_step"`      // 变异时航向扰动幅度（度）
	InitJitter      float64 `yaml:"init_jitter"`       // 初始化时航点相对起终点连线的扰动幅度
	SampleStep      float64 `yaml:"sample_step"`       // 路段碰撞检测的采样间距
	Weights         Weights `yaml:"weights"`
}

// Config YAML配置文件的根结构
type Config struct {
	Input   Input   `yaml:"input"`
	Scene   *Scene  `yaml:"scene,omitempty"`
	Vehicle Vehicle `yaml:"vehicle"`
	Control Control `yaml:"control"`
	Planner Planner `yaml:"planner"`
}
