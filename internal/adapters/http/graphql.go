package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/devcamper/internal/core/domain"
	"github.com/samirrijal/devcamper/internal/core/query"
	"github.com/samirrijal/devcamper/internal/pkg/logging"
)

// buildSchema creates the GraphQL schema wired to our services. The default
// resolver reads struct fields by their json tag, so domain types are returned
// as they are.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	locationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Location",
		Fields: graphql.Fields{
			"type":             &graphql.Field{Type: graphql.String},
			"coordinates":      &graphql.Field{Type: graphql.NewList(graphql.Float)},
			"formattedAddress": &graphql.Field{Type: graphql.String},
			"street":           &graphql.Field{Type: graphql.String},
			"city":             &graphql.Field{Type: graphql.String},
			"state":            &graphql.Field{Type: graphql.String},
			"zipcode":          &graphql.Field{Type: graphql.String},
			"country":          &graphql.Field{Type: graphql.String},
		},
	})

	summaryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "BootcampSummary",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"name":        &graphql.Field{Type: graphql.String},
			"description": &graphql.Field{Type: graphql.String},
		},
	})

	courseType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Course",
		Fields: graphql.Fields{
			"id":                   &graphql.Field{Type: graphql.String},
			"title":                &graphql.Field{Type: graphql.String},
			"description":          &graphql.Field{Type: graphql.String},
			"weeks":                &graphql.Field{Type: graphql.String},
			"tuition":              &graphql.Field{Type: graphql.Float},
			"minimumSkill":         &graphql.Field{Type: graphql.String},
			"scholarshipAvailable": &graphql.Field{Type: graphql.Boolean},
			"createdAt":            &graphql.Field{Type: graphql.DateTime},
			"bootcampId":           &graphql.Field{Type: graphql.String},
			"bootcamp":             &graphql.Field{Type: summaryType},
		},
	})

	bootcampType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Bootcamp",
		Fields: graphql.Fields{
			"id":            &graphql.Field{Type: graphql.String},
			"name":          &graphql.Field{Type: graphql.String},
			"slug":          &graphql.Field{Type: graphql.String},
			"description":   &graphql.Field{Type: graphql.String},
			"website":       &graphql.Field{Type: graphql.String},
			"phone":         &graphql.Field{Type: graphql.String},
			"email":         &graphql.Field{Type: graphql.String},
			"address":       &graphql.Field{Type: graphql.String},
			"location":      &graphql.Field{Type: locationType},
			"careers":       &graphql.Field{Type: graphql.NewList(graphql.String)},
			"averageRating": &graphql.Field{Type: graphql.Float},
			"averageCost":   &graphql.Field{Type: graphql.Float},
			"photo":         &graphql.Field{Type: graphql.String},
			"housing":       &graphql.Field{Type: graphql.Boolean},
			"jobAssistance": &graphql.Field{Type: graphql.Boolean},
			"jobGuarantee":  &graphql.Field{Type: graphql.Boolean},
			"acceptGi":      &graphql.Field{Type: graphql.Boolean},
			"createdAt":     &graphql.Field{Type: graphql.DateTime},
			"courses":       &graphql.Field{Type: graphql.NewList(courseType)},
		},
	})

	pageRefType := graphql.NewObject(graphql.ObjectConfig{
		Name: "PageRef",
		Fields: graphql.Fields{
			"page":  &graphql.Field{Type: graphql.Int},
			"limit": &graphql.Field{Type: graphql.Int},
		},
	})

	bootcampPageType := graphql.NewObject(graphql.ObjectConfig{
		Name: "BootcampPage",
		Fields: graphql.Fields{
			"count":    &graphql.Field{Type: graphql.Int},
			"total":    &graphql.Field{Type: graphql.Int},
			"next":     &graphql.Field{Type: pageRefType},
			"previous": &graphql.Field{Type: pageRefType},
			"data":     &graphql.Field{Type: graphql.NewList(bootcampType)},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"bootcamps": &graphql.Field{
				Type:        bootcampPageType,
				Description: "List bootcamps. query takes the same syntax as the REST query string, e.g. averageCost[lte]=10000&sort=-averageCost",
				Args: graphql.FieldConfigArgument{
					"query": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					raw, _ := p.Args["query"].(string)
					list, err := deps.Bootcamps.List(p.Context, query.ParseRawQuery(raw))
					if err != nil {
						return nil, gqlError(p, err)
					}
					return map[string]any{
						"count":    len(list.Data),
						"total":    list.Total,
						"next":     list.Pagination.Next,
						"previous": list.Pagination.Previous,
						"data":     list.Data,
					}, nil
				},
			},
			"bootcamp": &graphql.Field{
				Type: bootcampType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					b, err := deps.Bootcamps.Get(p.Context, p.Args["id"].(string))
					if err != nil {
						return nil, gqlError(p, err)
					}
					return b, nil
				},
			},
			"bootcampsInRadius": &graphql.Field{
				Type:        graphql.NewList(bootcampType),
				Description: "Bootcamps within distance miles of a postal code",
				Args: graphql.FieldConfigArgument{
					"zipcode":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"distance": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					bootcamps, err := deps.Bootcamps.WithinRadius(p.Context, p.Args["zipcode"].(string), p.Args["distance"].(float64))
					if err != nil {
						return nil, gqlError(p, err)
					}
					return bootcamps, nil
				},
			},
			"courses": &graphql.Field{
				Type:        graphql.NewList(courseType),
				Description: "All courses, or those of one bootcamp",
				Args: graphql.FieldConfigArgument{
					"bootcampId": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					id, _ := p.Args["bootcampId"].(string)
					courses, err := deps.Courses.List(p.Context, id)
					if err != nil {
						return nil, gqlError(p, err)
					}
					return courses, nil
				},
			},
			"course": &graphql.Field{
				Type: courseType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					c, err := deps.Courses.Get(p.Context, p.Args["id"].(string))
					if err != nil {
						return nil, gqlError(p, err)
					}
					return c, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// gqlError hides upstream details from clients the same way ErrorHandler does.
func gqlError(p graphql.ResolveParams, err error) error {
	if errors.Is(err, domain.ErrUpstream) {
		logging.FromContext(p.Context).Error("graphql upstream failure", "field", p.Info.FieldName, "error", err)
		return errors.New("Server Error")
	}
	return errors.New(domain.Message(err))
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string         `json:"query"`
		OperationName string         `json:"operationName"`
		Variables     map[string]any `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
