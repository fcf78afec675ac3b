package input

import (
	"context"
	"fmt"
	"os"
	"time"

	"git.fiblab.net/general/common/v2/mongoutil"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/autopark-sim/entity"
	"github.com/tsinghua-fib-lab/autopark-sim/utils/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"gopkg.in/yaml.v2"
)

// MongoDB查询超时
const fetchTimeout = 30 * time.Second

// Input 输入数据
// 功能：存储一次泊车任务所需的场景
type Input struct {
	Name  string
	Scene entity.Scene
}

// Init 加载场景
// 功能：根据配置确定场景来源并加载、校验
// 参数：c-配置对象
// 返回：加载完成的输入数据；来源不可用或场景不合法时返回错误
// 算法说明：
// 1. Input.Scene.File非空：从YAML文件加载
// 2. Input.Scene非空且配置了URI：从MongoDB按名字查找
// 3. 否则使用配置中内联的scene（未配置时为默认场景）
func Init(c config.Config) (*Input, error) {
	var s config.Scene
	var err error
	switch p := c.Input.Scene; {
	case p != nil && p.File != "":
		s, err = LoadSceneFile(p.File)
	case p != nil:
		if c.Input.URI == "" {
			return nil, &entity.ConfigurationError{Field: "input.uri", Reason: "required when loading scene from MongoDB"}
		}
		client := mongoutil.NewClient(c.Input.URI)
		defer client.Disconnect(context.Background())
		s, err = fetchScene(client, *p)
	case c.Scene != nil:
		s = *c.Scene
	default:
		s = config.DefaultScene()
	}
	if err != nil {
		return nil, err
	}
	scene := ToEntity(s)
	if err := scene.Validate(); err != nil {
		return nil, err
	}
	log.Infof("scene %q: spot %+v, %d obstacles", s.Name, scene.Spot, len(scene.Obstacles))
	return &Input{Name: s.Name, Scene: scene}, nil
}

// LoadSceneFile 从YAML文件加载场景
func LoadSceneFile(path string) (config.Scene, error) {
	var s config.Scene
	file, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("failed to load scene from file: %w", err)
	}
	if err := yaml.UnmarshalStrict(file, &s); err != nil {
		return s, fmt.Errorf("failed to parse scene file %s: %w", path, err)
	}
	return s, nil
}

// fetchScene 从MongoDB场景库中按名字加载场景
func fetchScene(client *mongo.Client, path config.InputPath) (config.Scene, error) {
	var s config.Scene
	coll := client.Database(path.DB).Collection(path.Col)
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()
	log.Infof("start fetching scene %q from %s.%s", path.Name, path.DB, path.Col)
	if err := coll.FindOne(ctx, bson.M{"name": path.Name}).Decode(&s); err != nil {
		return s, fmt.Errorf("failed to fetch scene %q from %s.%s: %w", path.Name, path.DB, path.Col, err)
	}
	log.Infof("finish fetching scene %q from %s.%s", path.Name, path.DB, path.Col)
	return s, nil
}

// ToEntity 配置中的场景转换为运行时场景
func ToEntity(s config.Scene) entity.Scene {
	return entity.Scene{
		World:     rect(s.World),
		Spot:      rect(s.Spot),
		Obstacles: lo.Map(s.Obstacles, func(r config.Rect, _ int) entity.Rect { return rect(r) }),
	}
}

func rect(r config.Rect) entity.Rect {
	return entity.Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}
