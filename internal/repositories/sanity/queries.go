package sanity

// GROQ projections resolve every reference at fetch time so the read models never need a
// second lookup.
const (
	productProjection = `{
  _id,
  name,
  "slug": slug.current,
  description,
  price,
  actual_price,
  paintingStyle,
  featured,
  "images": images[].asset->url,
  category->{_id, title, "slug": slug.current, "image": image.asset->url},
  material->{_id, title, "slug": slug.current},
  "createdAt": coalesce(createdAt, _createdAt),
  _updatedAt,
  dimensions {
    length {value, unit->{title, symbol}},
    width {value, unit->{title, symbol}},
    height {value, unit->{title, symbol}}
  }
}`

	categoryProjection = `{
  _id,
  title,
  "slug": coalesce(slug.current, slug),
  description,
  "image": coalesce(image.asset->url, images[0].asset->url)
}`

	materialProjection = `{_id, title, "slug": slug.current}`

	unitProjection = `{_id, title, symbol, "slug": slug.current}`

	queryProducts = `*[_type == "product" && defined(slug.current)] | order(_createdAt desc) ` + productProjection

	queryFeaturedProducts = `*[_type == "product" && featured == true && defined(slug.current)] | order(_createdAt desc) [0...$limit] ` + productProjection

	queryProductsByCategory = `*[_type == "product" && defined(slug.current) && references(*[_type == "category" && (slug.current == $slug || slug == $slug)]._id)] | order(_createdAt desc) ` + productProjection

	queryProductBySlug = `*[_type == "product" && slug.current == $slug][0] ` + productProjection

	queryCategories = `*[_type == "category"] | order(title asc) ` + categoryProjection

	queryCategoryBySlug = `*[_type == "category" && (slug.current == $slug || slug == $slug)][0] ` + categoryProjection

	queryMaterials = `*[_type == "Material"] | order(title asc) ` + materialProjection

	queryMaterialByID = `*[_type == "Material" && _id == $id][0] ` + materialProjection

	queryMeasurementByID = `*[_type == "measurement" && _id == $id][0] ` + unitProjection

	// queryPing is a cheap probe used by readiness checks.
	queryPing = `count(*[_type == "Material"])`
)
