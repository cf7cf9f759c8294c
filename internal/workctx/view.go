package workctx

import (
	"fmt"

	"github.com/calvinalkan/focus/internal/model"
	"github.com/calvinalkan/focus/pkg/graph"
)

// ViewBuilder turns the active pair into a denormalized work context.
type ViewBuilder struct {
	active *graph.Node[model.WorkContext]
	theme  *graph.Node[model.Theme]
	main   *graph.Node[[]model.WorkContext]
}

// NewViewBuilder creates the context view nodes below pair.
func NewViewBuilder(
	sched *graph.Scheduler, pair graph.Readable[model.Pair], tags TagLookup, projects ProjectLookup,
) *ViewBuilder {
	v := &ViewBuilder{}

	v.active = graph.Switch(sched, "activeWorkContext", pair, func(p model.Pair) (graph.Route[model.WorkContext], error) {
		return routeContext(p, tags, projects)
	})

	v.theme = graph.Derive1(sched, "currentTheme", v.active, func(c model.WorkContext) (model.Theme, error) {
		return c.Theme, nil
	}, graph.Comparable[model.Theme]())

	myDay := graph.NewSource(sched, "mainWorkContextId", model.MyDayTagID)
	v.main = graph.Switch(sched, "mainWorkContexts", myDay, func(id string) (graph.Route[[]model.WorkContext], error) {
		return graph.MapRoute(tags.TagByID(id), func(tag model.Tag) ([]model.WorkContext, error) {
			return []model.WorkContext{TagContext(tag)}, nil
		}), nil
	})

	return v
}

// ActiveContext emits the active work context. It keeps its last value while
// the active entity is not loaded, and records [ErrUnknownContextType] on
// the node for an unknown type.
func (v *ViewBuilder) ActiveContext() *graph.Node[model.WorkContext] { return v.active }

// CurrentTheme emits the theme of the active context.
func (v *ViewBuilder) CurrentTheme() graph.Readable[model.Theme] { return v.theme }

// MainWorkContexts emits the built-in contexts shown above all others.
func (v *ViewBuilder) MainWorkContexts() graph.Readable[[]model.WorkContext] { return v.main }

func routeContext(p model.Pair, tags TagLookup, projects ProjectLookup) (graph.Route[model.WorkContext], error) {
	switch p.Type {
	case model.ContextTypeTag:
		return graph.MapRoute(tags.TagByID(p.ID), func(tag model.Tag) (model.WorkContext, error) {
			return TagContext(tag), nil
		}), nil
	case model.ContextTypeProject:
		return graph.MapRoute(projects.ProjectByID(p.ID), func(project model.Project) (model.WorkContext, error) {
			return ProjectContext(project), nil
		}), nil
	default:
		return graph.Empty[model.WorkContext](), fmt.Errorf("%w: %q (id %s)", ErrUnknownContextType, p.Type, p.ID)
	}
}

// TagContext decorates a tag as a work context.
func TagContext(tag model.Tag) model.WorkContext {
	return model.WorkContext{
		ID:          tag.ID,
		Type:        model.ContextTypeTag,
		Title:       tag.Title,
		Icon:        tag.Icon,
		TaskIDs:     tag.TaskIDs,
		Theme:       tag.Theme,
		AdvancedCfg: tag.AdvancedCfg,
		RouterLink:  "tag/" + tag.ID,
	}
}

// ProjectContext decorates a project as a work context. Missing lists become
// empty and the icon is cleared.
func ProjectContext(project model.Project) model.WorkContext {
	taskIDs := project.TaskIDs
	if taskIDs == nil {
		taskIDs = []string{}
	}

	backlog := project.BacklogTaskIDs
	if backlog == nil {
		backlog = []string{}
	}

	return model.WorkContext{
		ID:             project.ID,
		Type:           model.ContextTypeProject,
		Title:          project.Title,
		TaskIDs:        taskIDs,
		BacklogTaskIDs: backlog,
		Theme:          project.Theme,
		AdvancedCfg:    project.AdvancedCfg,
		RouterLink:     "project/" + project.ID,
	}
}
