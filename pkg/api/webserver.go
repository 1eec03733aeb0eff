package api

import (
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/chenBenjamin97/possession-analyzer/pkg/batch"
	"github.com/chenBenjamin97/possession-analyzer/pkg/tally"
	"github.com/chenBenjamin97/possession-analyzer/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

//Processor runs extract and analyze for an uploaded video stored under 'directory.source'
type Processor func(videoName string)

func workspace() batch.Workspace {
	return batch.Workspace{Root: viper.GetString("directory.work")}
}

//listNames answers with the sorted names of dir, an empty list when dir does not exist yet
func listNames(ctx *gin.Context, dir string) {
	names, err := utils.ListDir(dir)
	if err != nil {
		if os.IsNotExist(errors.Cause(err)) {
			ctx.JSON(http.StatusOK, []string{})
			return
		}
		ctx.Status(http.StatusInternalServerError)
		return
	}

	ctx.JSON(http.StatusOK, names)
}

//videoDir resolves the 'name' query parameter to the workspace directory of that video
func videoDir(ctx *gin.Context) (string, bool) {
	dir, err := workspace().Dir(ctx.Request.URL.Query().Get("name"))
	if err != nil {
		ctx.Status(http.StatusNotAcceptable) //missing or invalid url parameter
		return "", false
	}

	return dir, true
}

func SetRouter(process Processor) *gin.Engine {
	r := gin.Default()

	apiRoutes := r.Group("/api")

	apiRoutes.GET("/UserUploadsVideosNames", func(ctx *gin.Context) {
		listNames(ctx, viper.GetString("directory.source"))
	})

	apiRoutes.GET("/AnalyzedVideosNames", func(ctx *gin.Context) {
		names, err := utils.ListDir(viper.GetString("directory.work"))
		if err != nil && !os.IsNotExist(errors.Cause(err)) {
			ctx.Status(http.StatusInternalServerError)
			return
		}

		analyzed := make([]string, 0, len(names))
		for _, name := range names {
			if _, err := os.Stat(workspace().Possession(filepath.Join(viper.GetString("directory.work"), name))); err == nil {
				analyzed = append(analyzed, name)
			}
		}

		ctx.JSON(http.StatusOK, analyzed)
	})

	apiRoutes.GET("/Results", func(ctx *gin.Context) {
		dir, ok := videoDir(ctx)
		if !ok {
			return
		}

		f, err := os.Open(workspace().Possession(dir))
		if err != nil {
			if os.IsNotExist(err) {
				ctx.Status(http.StatusNotFound)
				return
			}
			ctx.Status(http.StatusInternalServerError)
			return
		}
		defer f.Close()

		totals, err := tally.ReadTotals(f)
		if err != nil {
			log.Printf("api/Results: Could not parse '%s', got '%v'", f.Name(), err)
			ctx.Status(http.StatusInternalServerError)
			return
		}

		ctx.JSON(http.StatusOK, totals)
	})

	apiRoutes.GET("/FramesNames", func(ctx *gin.Context) {
		listNames(ctx, viper.GetString("frames.output.dir"))
	})

	apiRoutes.GET("/AnnotatedNames", func(ctx *gin.Context) {
		dir, ok := videoDir(ctx)
		if !ok {
			return
		}

		listNames(ctx, workspace().Images(dir))
	})

	apiRoutes.GET("/Frame", func(ctx *gin.Context) {
		annotated := ctx.Request.URL.Query().Get("annotated")
		if annotated != "true" && annotated != "false" {
			ctx.Status(http.StatusNotAcceptable) //missing url parameter
			return
		}

		dir := viper.GetString("frames.output.dir")
		contentType := "image/jpeg"
		if annotated == "true" {
			vdir, err := workspace().Dir(ctx.Request.URL.Query().Get("video"))
			if err != nil {
				ctx.Status(http.StatusNotAcceptable)
				return
			}
			dir = workspace().Images(vdir)
			contentType = "image/png"
		}

		framePath, err := utils.SafeJoin(dir, ctx.Request.URL.Query().Get("name"))
		if err != nil {
			ctx.Status(http.StatusNotAcceptable)
			return
		}

		if _, err := os.Stat(framePath); err != nil {
			if os.IsNotExist(err) {
				ctx.Status(http.StatusNotFound)
				return
			} else {
				ctx.Status(http.StatusInternalServerError)
				return
			}
		}

		ctx.Header("Content-Type", contentType)
		http.ServeFile(ctx.Writer, ctx.Request, framePath)
	})

	apiRoutes.POST("/Upload", func(ctx *gin.Context) {
		file, fHeader, err := ctx.Request.FormFile("video")
		if err != nil {
			ctx.Status(http.StatusNotAcceptable)
			return
		}
		defer file.Close()

		srcFilePath, err := utils.SafeJoin(viper.GetString("directory.source"), filepath.Base(fHeader.Filename))
		if err != nil {
			ctx.Status(http.StatusNotAcceptable)
			return
		}
		name := filepath.Base(srcFilePath)

		if existNames, err := utils.ListDir(viper.GetString("directory.source")); err != nil {
			ctx.Status(http.StatusInternalServerError)
			return
		} else {
			if utils.InSlice(name, existNames) {
				ctx.Status(http.StatusNotAcceptable)
				return
			}
		}

		log.Printf("api/Upload: Received new file: name - '%s', size - %v Bytes", name, fHeader.Size)

		dst, err := os.OpenFile(srcFilePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0444)
		if err != nil {
			log.Printf("api/Upload: Could not create '%s' file, got '%v'", srcFilePath, err)
			ctx.Status(http.StatusInternalServerError)
			return
		}

		if _, err := io.Copy(dst, file); err != nil {
			dst.Close()
			os.Remove(srcFilePath)
			log.Printf("api/Upload: Could not write '%s' file, got '%v'", srcFilePath, err)
			ctx.Status(http.StatusInternalServerError)
			return
		}

		if err := dst.Close(); err != nil {
			log.Printf("api/Upload: Could not close '%s' file, got '%v'", srcFilePath, err)
			ctx.Status(http.StatusInternalServerError)
			return
		}

		go process(name)

		ctx.Status(http.StatusAccepted)
	})

	return r
}
