package main

import (
	"context"
	"encoding/base64"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	easy "git.fiblab.net/utils/logrus-easy-formatter"
	"github.com/sirupsen/logrus"
	"github.com/tsinghua-fib-lab/autopark-sim/entity"
	"github.com/tsinghua-fib-lab/autopark-sim/task"
	"github.com/tsinghua-fib-lab/autopark-sim/utils/config"
	"github.com/tsinghua-fib-lab/autopark-sim/utils/randengine"
	"github.com/tsinghua-fib-lab/autopark-sim/utils/report"
	"gopkg.in/yaml.v2"
)

var (
	// 任务名，用于日志
	job = flag.String("job", "job0", "the name of the parking task")
	// 配置文件路径
	configPath = flag.String("config", "", "config file path (empty means built-in defaults)")
	// 配置文件Base64编码后的数据
	configData = flag.String("config-data", "", "config file base64 encoded data")
	// 覆盖配置中的control.hybrid
	hybrid = flag.Bool("hybrid", false, "plan waypoints with the genetic planner before parking")
	// 覆盖配置中的planner.seed，0表示使用配置值
	seed = flag.Uint64("seed", 0, "random seed of planner and random start (0 means use config)")
	// 随机起始位姿
	randomStart = flag.Bool("random-start", false, "start from a random collision-free pose")

	// 输出
	plotPath  = flag.String("plot", "", "trajectory plot output path, e.g. trajectory.png (empty means disabled)")
	chartPath = flag.String("chart", "", "interactive html report output path (empty means disabled)")
	tracePath = flag.String("trace", "", "per-tick json lines trace output path (empty means disabled)")

	// log
	logLevels = map[string]logrus.Level{
		"trace":    logrus.TraceLevel,
		"debug":    logrus.DebugLevel,
		"info":     logrus.InfoLevel,
		"warn":     logrus.WarnLevel,
		"error":    logrus.ErrorLevel,
		"critical": logrus.FatalLevel,
		"off":      logrus.PanicLevel,
	}
	logLevel = flag.String("log.level", "info", "日志级别（可选项：trace debug info warn error critical off）")

	log = logrus.WithField("module", "autopark")
)

func loadConfig() (config.Config, error) {
	var file []byte
	var err error
	switch {
	case *configPath != "":
		if file, err = os.ReadFile(*configPath); err != nil {
			return config.Config{}, err
		}
	case *configData != "":
		if file, err = base64.StdEncoding.DecodeString(*configData); err != nil {
			return config.Config{}, err
		}
	default:
		log.Warn("no config specified, use built-in defaults")
		return config.Default(), nil
	}
	var c config.Config
	if err := yaml.UnmarshalStrict(file, &c); err != nil {
		return config.Config{}, err
	}
	return c, nil
}

func main() {
	flag.Parse()
	logrus.SetFormatter(&easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05.0000",
		LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
	})
	// log: 运行时才修改
	if level, ok := logLevels[*logLevel]; ok {
		logrus.SetLevel(level)
	} else {
		log.Panicf("log.level must be one of %v", logLevels)
	}
	// 获取配置
	c, err := loadConfig()
	if err != nil {
		log.Fatalf("config load err: %v", err)
	}
	if *hybrid {
		c.Control.Hybrid = true
	}
	if *seed != 0 {
		c.Planner.Seed = *seed
	}
	log.Infof("%+v", c)

	t, err := task.NewContext(*job, c)
	if err != nil {
		log.Fatalf("task init err: %v", err)
	}
	defer t.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Infof("scene %q loaded with %d obstacles", t.GetInput().Name, len(t.Scene().Obstacles))
	start := t.StartPose()
	if *randomStart {
		if start, err = t.RandomStartPose(randengine.New(t.RuntimeConfig().P.Seed)); err != nil {
			log.Fatalf("random start err: %v", err)
		}
	}
	e, err := t.NewEpisode(ctx, start)
	if err != nil {
		log.Fatalf("episode init err: %v", err)
	}
	var trace *report.TraceWriter
	if *tracePath != "" {
		f, err := os.Create(*tracePath)
		if err != nil {
			log.Fatalf("trace file err: %v", err)
		}
		defer f.Close()
		trace = report.NewTraceWriter(f)
		e.OnStep(trace.Observe)
	}

	res, runErr := e.Run(ctx)
	log.Infof("episode %s: %v after %d ticks, final %v, reading %+v", res.ID, res.Outcome, res.Ticks, res.Final.Pose, res.Reading)
	if res.Plan != nil {
		log.Infof("plan: fitness=%.2f feasible=%v generations=%d", res.Plan.BestFitness, res.Plan.Feasible, res.Plan.Generations)
	}

	if trace != nil {
		if err := trace.Flush(); err != nil {
			log.Errorf("trace write err: %v", err)
		}
	}
	if *plotPath != "" {
		if err := report.WriteTrajectoryPNG(*plotPath, t.Scene(), res); err != nil {
			log.Errorf("plot err: %v", err)
		}
	}
	if *chartPath != "" {
		if err := writeChart(*chartPath, res); err != nil {
			log.Errorf("chart err: %v", err)
		}
	}

	switch {
	case errors.Is(runErr, entity.ErrCollision):
		log.Errorf("%v", runErr)
		os.Exit(2)
	case runErr != nil:
		log.Fatalf("run err: %v", runErr)
	case res.Outcome != task.Parked:
		log.Warnf("episode ended without parking: %v", res.Outcome)
		os.Exit(1)
	}
}

func writeChart(path string, res task.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return report.WriteChartHTML(f, res)
}
